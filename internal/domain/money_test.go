package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/autoline-panel/shop-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(category domain.RepairCategory, amount string) domain.RepairItem {
	return domain.RepairItem{Category: category, Description: string(category), Amount: decimal.RequireFromString(amount)}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integer", input: "1200", want: "1200"},
		{name: "decimal", input: "99.95", want: "99.95"},
		{name: "rounded to cents", input: "10.005", want: "10.01"},
		{name: "surrounding spaces", input: "  500 ", want: "500"},
		{name: "empty is zero", input: "", want: "0"},
		{name: "garbage is zero", input: "abc", want: "0"},
		{name: "negative is zero", input: "-50", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ParseAmount(tt.input)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestTotal(t *testing.T) {
	t.Run("sums all amounts", func(t *testing.T) {
		items := []domain.RepairItem{
			item(domain.CategoryBumperRepair, "1200"),
			item(domain.CategoryLabour, "500"),
		}
		total := domain.Total(items)
		assert.True(t, decimal.NewFromInt(1700).Equal(total))
		assert.Equal(t, "R 1,700.00", domain.FormatZAR(total))
	})

	t.Run("order independent", func(t *testing.T) {
		a := []domain.RepairItem{
			item(domain.CategoryPaintJob, "0.10"),
			item(domain.CategoryDentRemoval, "0.20"),
			item(domain.CategoryLabour, "1234.56"),
		}
		b := []domain.RepairItem{a[2], a[0], a[1]}
		assert.True(t, domain.Total(a).Equal(domain.Total(b)))
		assert.True(t, decimal.RequireFromString("1234.86").Equal(domain.Total(a)))
	})

	t.Run("negative amounts count as zero", func(t *testing.T) {
		items := []domain.RepairItem{
			{Category: domain.CategoryOther, Amount: decimal.NewFromInt(-100)},
			item(domain.CategoryLabour, "50"),
		}
		assert.True(t, decimal.NewFromInt(50).Equal(domain.Total(items)))
	})

	t.Run("line amounts are stored in cents before summing", func(t *testing.T) {
		items := []domain.RepairItem{
			item(domain.CategoryPaintJob, "0.004"),
			item(domain.CategoryLabour, "0.004"),
		}
		assert.True(t, domain.Total(items).IsZero(), "each line rounds to 0.00 as numeric(12,2) would")
	})

	t.Run("empty list is zero", func(t *testing.T) {
		assert.True(t, domain.Total(nil).IsZero())
	})
}

func TestFormatZAR(t *testing.T) {
	assert.Equal(t, "R 0.00", domain.FormatZAR(decimal.Zero))
	assert.Equal(t, "R 950.50", domain.FormatZAR(decimal.RequireFromString("950.5")))
	assert.Equal(t, "R 1,234,567.89", domain.FormatZAR(decimal.RequireFromString("1234567.89")))
}

func TestAmount_JSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "number", raw: `{"amount": 1200.5}`, want: "1200.5"},
		{name: "numeric string", raw: `{"amount": "300"}`, want: "300"},
		{name: "empty string", raw: `{"amount": ""}`, want: "0"},
		{name: "null", raw: `{"amount": null}`, want: "0"},
		{name: "missing", raw: `{}`, want: "0"},
		{name: "text", raw: `{"amount": "twelve"}`, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in domain.RepairItemInput
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &in))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(in.Amount.Decimal), "got %s", in.Amount.Decimal)
		})
	}

	out, err := json.Marshal(domain.RepairItemDTO{Amount: domain.NewAmount(decimal.NewFromInt(1700))})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"amount":1700.00`)
}
