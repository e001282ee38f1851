package domain_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/coa_posting_engine/internal/apperrors"
	"github.com/SscSPs/coa_posting_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func line(code string, debit, credit int64) domain.JournalLine {
	return domain.JournalLine{AccountCode: code, Debit: decimal.NewFromInt(debit), Credit: decimal.NewFromInt(credit)}
}

func TestJournalEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lines   []domain.JournalLine
		wantErr bool
	}{
		{name: "balanced", lines: []domain.JournalLine{line("1-1100", 100, 0), line("4-1100", 0, 100)}},
		{name: "single line", lines: []domain.JournalLine{line("1-1100", 100, 0)}, wantErr: true},
		{name: "unbalanced", lines: []domain.JournalLine{line("1-1100", 100, 0), line("4-1100", 0, 99)}, wantErr: true},
		{name: "both sides on a line", lines: []domain.JournalLine{line("1-1100", 100, 100), line("4-1100", 0, 0)}, wantErr: true},
		{name: "zero line", lines: []domain.JournalLine{line("1-1100", 100, 0), line("4-1100", 0, 100), line("2-1300", 0, 0)}, wantErr: true},
		{name: "negative amount", lines: []domain.JournalLine{line("1-1100", -100, 0), line("4-1100", -100, 0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.JournalEntry{TransactionID: "tx-1", Lines: tt.lines}.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperrors.ErrUnbalancedEntry), "expected ErrUnbalancedEntry, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
