// Package coa resolves business transactions to chart-of-accounts entries.
package coa

import (
	"sort"

	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
)

// TableVersion identifies the canonical table below. Bump it whenever a class
// or a category mapping changes so cached snapshots are not reused.
const TableVersion = "2024.06-1"

// Class is a canonical account class: the exact code the resolver tries first,
// the prefix it falls back to, and the usage role it tries last.
type Class struct {
	Name      string           `json:"name"`
	Code      string           `json:"code"`
	Prefix    string           `json:"prefix"`
	UsageRole domain.UsageRole `json:"usageRole"`
	Inventory bool             `json:"inventory"`
}

const (
	ClassRevenueGoods      = "revenue-goods"
	ClassRevenueServices   = "revenue-services"
	ClassWarehouseMaterial = "warehouse-material"
	ClassOfficeSupplies    = "office-supplies"
	ClassVehicleParts      = "vehicle-parts"
	ClassInventory         = "inventory"
	ClassOtherRevenue      = "other-revenue"
	ClassCash              = "cash"
	ClassBank              = "bank"
	ClassReceivable        = "receivable"
	ClassInputTax          = "input-tax"
	ClassPayable           = "payable"
	ClassOutputTax         = "output-tax"
	ClassCOGS              = "cogs"
)

var classes = map[string]Class{
	ClassRevenueGoods:      {Name: ClassRevenueGoods, Code: "4-1100", Prefix: "4-11", UsageRole: domain.RoleRevenueGoods},
	ClassRevenueServices:   {Name: ClassRevenueServices, Code: "4-2100", Prefix: "4-21", UsageRole: domain.RoleRevenueService},
	ClassWarehouseMaterial: {Name: ClassWarehouseMaterial, Code: "6-2100", Prefix: "6-21", UsageRole: domain.RoleWarehouseMaterial},
	ClassOfficeSupplies:    {Name: ClassOfficeSupplies, Code: "6-3100", Prefix: "6-31", UsageRole: domain.RoleOfficeSupplies},
	ClassVehicleParts:      {Name: ClassVehicleParts, Code: "6-5100", Prefix: "6-51", UsageRole: domain.RoleVehicleParts},
	ClassInventory:         {Name: ClassInventory, Code: "1-1400", Prefix: "1-14", UsageRole: domain.RoleInventory, Inventory: true},
	ClassOtherRevenue:      {Name: ClassOtherRevenue, Code: "4-9000", Prefix: "4-9", UsageRole: domain.RoleOtherRevenue},
	ClassCash:              {Name: ClassCash, Code: "1-1100", Prefix: "1-11", UsageRole: domain.RoleCash},
	ClassBank:              {Name: ClassBank, Code: "1-1200", Prefix: "1-12", UsageRole: domain.RoleBank},
	ClassReceivable:        {Name: ClassReceivable, Code: "1-1300", Prefix: "1-13", UsageRole: domain.RoleReceivable},
	ClassInputTax:          {Name: ClassInputTax, Code: "1-1500", Prefix: "1-15", UsageRole: domain.RoleInputTax},
	ClassPayable:           {Name: ClassPayable, Code: "2-1100", Prefix: "2-11", UsageRole: domain.RolePayable},
	ClassOutputTax:         {Name: ClassOutputTax, Code: "2-1300", Prefix: "2-13", UsageRole: domain.RoleOutputTax},
	ClassCOGS:              {Name: ClassCOGS, Code: "5-1100", Prefix: "5-11", UsageRole: domain.RoleCOGS},
}

// categoryClasses maps normalized category labels to a class. Anything not
// listed falls into other-revenue.
var categoryClasses = map[string]string{
	"minimarket":          ClassRevenueGoods,
	"retail":              ClassRevenueGoods,
	"minuman":             ClassRevenueGoods,
	"makanan":             ClassRevenueGoods,
	"alat kesehatan":      ClassRevenueGoods,
	"elektronik":          ClassRevenueGoods,
	"jasa pengiriman":     ClassRevenueServices,
	"freight":             ClassRevenueServices,
	"trucking":            ClassRevenueServices,
	"ekspedisi":           ClassRevenueServices,
	"warehouse material":  ClassWarehouseMaterial,
	"atk":                 ClassOfficeSupplies,
	"kebersihan":          ClassOfficeSupplies,
	"sparepart kendaraan": ClassVehicleParts,
	"persediaan":          ClassInventory,
	"inventory":           ClassInventory,
}

// usageClasses covers the legs that do not depend on the category.
var usageClasses = map[domain.Usage]string{
	domain.UsageCash:       ClassCash,
	domain.UsageBank:       ClassBank,
	domain.UsageReceivable: ClassReceivable,
	domain.UsagePayable:    ClassPayable,
	domain.UsageInventory:  ClassInventory,
	domain.UsageInputTax:   ClassInputTax,
	domain.UsageOutputTax:  ClassOutputTax,
	domain.UsageCOGS:       ClassCOGS,
}

// ClassForCategory returns the canonical class of a category label.
func ClassForCategory(category string) Class {
	if name, ok := categoryClasses[domain.NormalizeKey(category)]; ok {
		return classes[name]
	}
	return classes[ClassOtherRevenue]
}

// ClassFor returns the canonical class for a resolve request. Revenue and
// expense legs are classified by category, every other leg by usage.
func ClassFor(req domain.ResolveRequest) Class {
	if name, ok := usageClasses[req.Usage]; ok {
		return classes[name]
	}
	return ClassForCategory(req.Category)
}

// CategoryMapping is one row of the category table, for display.
type CategoryMapping struct {
	Category string `json:"category"`
	Class    string `json:"class"`
}

// Table is the full canonical lookup, sorted for stable output.
type Table struct {
	Version    string            `json:"version"`
	Classes    []Class           `json:"classes"`
	Categories []CategoryMapping `json:"categories"`
	Fallback   string            `json:"fallback"`
}

// CanonicalTable returns a copy of the canonical lookup.
func CanonicalTable() Table {
	t := Table{Version: TableVersion, Fallback: ClassOtherRevenue}
	for _, c := range classes {
		t.Classes = append(t.Classes, c)
	}
	sort.Slice(t.Classes, func(i, j int) bool { return t.Classes[i].Code < t.Classes[j].Code })

	for cat, cls := range categoryClasses {
		t.Categories = append(t.Categories, CategoryMapping{Category: cat, Class: cls})
	}
	sort.Slice(t.Categories, func(i, j int) bool { return t.Categories[i].Category < t.Categories[j].Category })
	return t
}
