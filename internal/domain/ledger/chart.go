package ledger

import (
	"sort"
	"strings"
)

// Template describes one account in the chart of accounts.
type Template struct {
	Code       string
	Name       string
	Level      int // 1..3, hierarchy depth
	ParentCode string
	Nature     Nature
	Type       AccountType
}

// Chart is an immutable chart of accounts keyed by account code.
type Chart struct {
	byCode map[string]Template
	codes  []string
}

// NewChart builds a chart from templates. Later duplicates win.
func NewChart(templates []Template) *Chart {
	c := &Chart{byCode: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if _, exists := c.byCode[t.Code]; !exists {
			c.codes = append(c.codes, t.Code)
		}
		c.byCode[t.Code] = t
	}
	// Account codes are numeric strings of varying length; statutory order
	// is lexicographic ("111" < "112" < "1331"), not numeric.
	sort.Strings(c.codes)
	return c
}

// Lookup returns the template for an account code.
func (c *Chart) Lookup(code string) (Template, bool) {
	t, ok := c.byCode[code]
	return t, ok
}

// Templates returns all templates sorted by code.
func (c *Chart) Templates() []Template {
	out := make([]Template, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.byCode[code])
	}
	return out
}

// TopLevel reports whether code is a level-1 account.
func (c *Chart) TopLevel(code string) bool {
	t, ok := c.byCode[code]
	return ok && t.Level == 1
}

// ChildrenOf returns codes of direct children of the given account.
func (c *Chart) ChildrenOf(code string) []string {
	var out []string
	for _, candidate := range c.codes {
		if c.byCode[candidate].ParentCode == code {
			out = append(out, candidate)
		}
	}
	return out
}

// RootOf walks parents up to the level-1 ancestor of code.
// Falls back to the longest registered prefix when the exact code is unknown.
func (c *Chart) RootOf(code string) (Template, bool) {
	t, ok := c.byCode[code]
	if !ok {
		for l := len(code) - 1; l >= 3; l-- {
			if candidate, found := c.byCode[code[:l]]; found {
				t, ok = candidate, true
				break
			}
		}
		if !ok {
			return Template{}, false
		}
	}
	for t.Level > 1 && t.ParentCode != "" {
		parent, found := c.byCode[t.ParentCode]
		if !found {
			break
		}
		t = parent
	}
	return t, t.Level == 1
}

// DefaultChart returns the small-business chart of accounts
// (Vietnamese SME chart, Circular 133 numbering).
func DefaultChart() *Chart {
	return NewChart(defaultTemplates)
}

var defaultTemplates = []Template{
	// Assets
	{Code: "111", Name: "Cash on hand", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "1111", Name: "Cash on hand - VND", Level: 2, ParentCode: "111", Nature: NatureDebit, Type: TypeAsset},
	{Code: "112", Name: "Cash in bank", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "1121", Name: "Cash in bank - VND", Level: 2, ParentCode: "112", Nature: NatureDebit, Type: TypeAsset},
	{Code: "121", Name: "Trading securities", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "128", Name: "Held-to-maturity investments", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "131", Name: "Trade receivables", Level: 1, Nature: NatureAmphibious, Type: TypeAsset},
	{Code: "133", Name: "Deductible VAT", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "1331", Name: "Deductible VAT on goods and services", Level: 2, ParentCode: "133", Nature: NatureDebit, Type: TypeAsset},
	{Code: "136", Name: "Intra-company receivables", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "138", Name: "Other receivables", Level: 1, Nature: NatureAmphibious, Type: TypeAsset},
	{Code: "141", Name: "Advances to employees", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "152", Name: "Raw materials", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "153", Name: "Tools and supplies", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "154", Name: "Work in progress", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "155", Name: "Finished goods", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "156", Name: "Merchandise inventory", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "1561", Name: "Merchandise purchase cost", Level: 2, ParentCode: "156", Nature: NatureDebit, Type: TypeAsset},
	{Code: "157", Name: "Goods on consignment", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "211", Name: "Tangible fixed assets", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "214", Name: "Accumulated depreciation", Level: 1, Nature: NatureCredit, Type: TypeAsset},
	{Code: "217", Name: "Investment property", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "228", Name: "Other long-term investments", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "229", Name: "Provision for asset losses", Level: 1, Nature: NatureCredit, Type: TypeAsset},
	{Code: "241", Name: "Construction in progress", Level: 1, Nature: NatureDebit, Type: TypeAsset},
	{Code: "242", Name: "Prepaid expenses", Level: 1, Nature: NatureDebit, Type: TypeAsset},

	// Liabilities
	{Code: "331", Name: "Trade payables", Level: 1, Nature: NatureAmphibious, Type: TypeLiability},
	{Code: "333", Name: "Taxes and state payables", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "3331", Name: "VAT payable", Level: 2, ParentCode: "333", Nature: NatureCredit, Type: TypeLiability},
	{Code: "3334", Name: "Corporate income tax payable", Level: 2, ParentCode: "333", Nature: NatureCredit, Type: TypeLiability},
	{Code: "334", Name: "Payables to employees", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "335", Name: "Accrued expenses", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "336", Name: "Intra-company payables", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "338", Name: "Other payables", Level: 1, Nature: NatureAmphibious, Type: TypeLiability},
	{Code: "341", Name: "Borrowings and finance leases", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "352", Name: "Provisions", Level: 1, Nature: NatureCredit, Type: TypeLiability},
	{Code: "353", Name: "Bonus and welfare fund", Level: 1, Nature: NatureCredit, Type: TypeLiability},

	// Equity
	{Code: "411", Name: "Owner's capital", Level: 1, Nature: NatureCredit, Type: TypeEquity},
	{Code: "413", Name: "Exchange rate differences", Level: 1, Nature: NatureAmphibious, Type: TypeEquity},
	{Code: "418", Name: "Other equity funds", Level: 1, Nature: NatureCredit, Type: TypeEquity},
	{Code: "421", Name: "Undistributed profit after tax", Level: 1, Nature: NatureAmphibious, Type: TypeEquity},
	{Code: "4211", Name: "Undistributed profit prior years", Level: 2, ParentCode: "421", Nature: NatureAmphibious, Type: TypeEquity},
	{Code: "4212", Name: "Undistributed profit current year", Level: 2, ParentCode: "421", Nature: NatureAmphibious, Type: TypeEquity},

	// Revenue
	{Code: "511", Name: "Sales revenue", Level: 1, Nature: NatureCredit, Type: TypeRevenue},
	{Code: "515", Name: "Finance income", Level: 1, Nature: NatureCredit, Type: TypeRevenue},
	{Code: "521", Name: "Revenue deductions", Level: 1, Nature: NatureDebit, Type: TypeRevenue},
	{Code: "711", Name: "Other income", Level: 1, Nature: NatureCredit, Type: TypeRevenue},

	// Costs and expenses
	{Code: "632", Name: "Cost of goods sold", Level: 1, Nature: NatureDebit, Type: TypeCost},
	{Code: "635", Name: "Finance expenses", Level: 1, Nature: NatureDebit, Type: TypeCost},
	{Code: "642", Name: "General administration expenses", Level: 1, Nature: NatureDebit, Type: TypeExpense},
	{Code: "6421", Name: "Selling expenses", Level: 2, ParentCode: "642", Nature: NatureDebit, Type: TypeExpense},
	{Code: "6422", Name: "Management expenses", Level: 2, ParentCode: "642", Nature: NatureDebit, Type: TypeExpense},
	{Code: "811", Name: "Other expenses", Level: 1, Nature: NatureDebit, Type: TypeExpense},
	{Code: "821", Name: "Corporate income tax expense", Level: 1, Nature: NatureDebit, Type: TypeExpense},
}

// CodeLess orders account codes lexicographically, the statutory order for
// numeric account strings of varying length.
func CodeLess(a, b string) bool {
	return strings.Compare(a, b) < 0
}
