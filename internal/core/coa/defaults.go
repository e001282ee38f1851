package coa

import "github.com/SscSPs/coa_posting_engine/internal/core/domain"

func header(code, name string, t domain.AccountType, level int) domain.Account {
	return domain.Account{Code: code, Name: name, AccountType: t, Level: level, IsHeader: true, NormalBalance: t.DefaultNormalBalance(), IsActive: true}
}

func detail(code, name string, t domain.AccountType, role domain.UsageRole) domain.Account {
	return domain.Account{Code: code, Name: name, AccountType: t, Level: 3, NormalBalance: t.DefaultNormalBalance(), UsageRole: role, IsActive: true}
}

// DefaultAccounts is the starter chart of accounts. It contains one detail
// account per canonical class plus the headers above them. The same rows are
// seeded by the 000002 migration.
func DefaultAccounts() []domain.Account {
	return []domain.Account{
		header("1-0000", "Aset", domain.Asset, 1),
		header("1-1000", "Aset Lancar", domain.Asset, 2),
		detail("1-1100", "Kas", domain.Asset, domain.RoleCash),
		detail("1-1200", "Bank", domain.Asset, domain.RoleBank),
		detail("1-1300", "Piutang Usaha", domain.Asset, domain.RoleReceivable),
		detail("1-1400", "Persediaan Barang", domain.Asset, domain.RoleInventory),
		detail("1-1500", "PPN Masukan", domain.Asset, domain.RoleInputTax),
		header("2-0000", "Kewajiban", domain.Liability, 1),
		header("2-1000", "Kewajiban Lancar", domain.Liability, 2),
		detail("2-1100", "Hutang Usaha", domain.Liability, domain.RolePayable),
		detail("2-1300", "PPN Keluaran", domain.Liability, domain.RoleOutputTax),
		header("3-0000", "Ekuitas", domain.Equity, 1),
		detail("3-1100", "Modal Disetor", domain.Equity, domain.RoleNone),
		header("4-0000", "Pendapatan", domain.Revenue, 1),
		header("4-1000", "Pendapatan Usaha", domain.Revenue, 2),
		detail("4-1100", "Pendapatan Penjualan Barang", domain.Revenue, domain.RoleRevenueGoods),
		detail("4-2100", "Pendapatan Jasa Pengiriman", domain.Revenue, domain.RoleRevenueService),
		detail("4-9000", "Pendapatan Lain-lain", domain.Revenue, domain.RoleOtherRevenue),
		header("5-0000", "Harga Pokok Penjualan", domain.COGS, 1),
		detail("5-1100", "HPP Barang Dagang", domain.COGS, domain.RoleCOGS),
		header("6-0000", "Beban Operasional", domain.OperatingExpense, 1),
		detail("6-2100", "Beban Material Gudang", domain.OperatingExpense, domain.RoleWarehouseMaterial),
		detail("6-3100", "Beban ATK dan Kebersihan", domain.OperatingExpense, domain.RoleOfficeSupplies),
		detail("6-5100", "Beban Sparepart Kendaraan", domain.OperatingExpense, domain.RoleVehicleParts),
	}
}
