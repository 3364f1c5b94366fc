// Package balancesheet maps trial balance closings onto the statutory
// balance sheet template and enforces Assets = Liabilities + Equity.
package balancesheet

// BalanceSide selects which side of an account's closing balance a template
// line reads. A typed side replaces note-string conventions so an amphibious
// account like trade payables 331 can feed both the asset template (its
// debit side: prepayments to suppliers) and the liability template (its
// credit side: payables).
type BalanceSide string

const (
	// SideDebit reads the closing debit balance (zero when the account nets credit).
	SideDebit BalanceSide = "DEBIT"
	// SideCredit reads the closing credit balance (zero when the account nets debit).
	SideCredit BalanceSide = "CREDIT"
	// SideNet reads the signed net balance, oriented by the section: debit
	// positive in asset sections, credit positive in liability and equity
	// sections.
	SideNet BalanceSide = "NET"
)

// AccountMapping binds one source account to a template line.
type AccountMapping struct {
	Account string
	Side    BalanceSide

	// Negative subtracts the mapped amount (contra accounts such as
	// accumulated depreciation 214 or loss provisions 229).
	Negative bool
}

// Section identifies the statement section a line belongs to.
type Section string

const (
	SectionShortTermAssets Section = "SHORT_TERM_ASSETS"
	SectionLongTermAssets  Section = "LONG_TERM_ASSETS"
	SectionLiabilities     Section = "LIABILITIES"
	SectionEquity          Section = "EQUITY"
)

// creditOriented reports whether credit balances are presented positive in
// the section.
func (s Section) creditOriented() bool {
	return s == SectionLiabilities || s == SectionEquity
}

// TemplateLine declares one statutory line. A line either maps source
// accounts directly or sums child lines (SumOf), never both.
type TemplateLine struct {
	Code     string
	Name     string
	Level    int // 0=grand total, 1=group, 2=detail
	Section  Section
	Mappings []AccountMapping
	SumOf    []string
	IsTotal  bool
}

// statutoryTemplate is the fixed small-business balance sheet layout
// (Circular 133 short form).
var statutoryTemplate = []TemplateLine{
	// --- Short-term assets ---
	{Code: "100", Name: "Short-term assets", Level: 1, Section: SectionShortTermAssets, IsTotal: true,
		SumOf: []string{"110", "120", "130", "140", "150"}},

	{Code: "110", Name: "Cash and cash equivalents", Level: 1, Section: SectionShortTermAssets,
		SumOf: []string{"111", "112"}},
	{Code: "111", Name: "Cash on hand", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "111", Side: SideNet}}},
	{Code: "112", Name: "Cash in bank", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "112", Side: SideNet}}},

	{Code: "120", Name: "Short-term financial investments", Level: 1, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{
			{Account: "121", Side: SideNet},
			{Account: "128", Side: SideNet},
		}},

	{Code: "130", Name: "Short-term receivables", Level: 1, Section: SectionShortTermAssets,
		SumOf: []string{"131", "132", "136"}},
	{Code: "131", Name: "Trade receivables from customers", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "131", Side: SideDebit}}},
	{Code: "132", Name: "Prepayments to suppliers", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "331", Side: SideDebit}}},
	{Code: "136", Name: "Other receivables", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{
			{Account: "136", Side: SideNet},
			{Account: "138", Side: SideDebit},
			{Account: "141", Side: SideNet},
		}},

	{Code: "140", Name: "Inventories", Level: 1, Section: SectionShortTermAssets,
		SumOf: []string{"141", "149"}},
	{Code: "141", Name: "Inventories", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{
			{Account: "152", Side: SideNet},
			{Account: "153", Side: SideNet},
			{Account: "154", Side: SideNet},
			{Account: "155", Side: SideNet},
			{Account: "156", Side: SideNet},
			{Account: "157", Side: SideNet},
		}},
	{Code: "149", Name: "Provision for inventory devaluation", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "229", Side: SideCredit, Negative: true}}},

	{Code: "150", Name: "Other short-term assets", Level: 1, Section: SectionShortTermAssets,
		SumOf: []string{"151", "152", "153"}},
	{Code: "151", Name: "Short-term prepaid expenses", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "242", Side: SideNet}}},
	{Code: "152", Name: "Deductible VAT", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "133", Side: SideNet}}},
	{Code: "153", Name: "Taxes recoverable from the state", Level: 2, Section: SectionShortTermAssets,
		Mappings: []AccountMapping{{Account: "333", Side: SideDebit}}},

	// --- Long-term assets ---
	{Code: "200", Name: "Long-term assets", Level: 1, Section: SectionLongTermAssets, IsTotal: true,
		SumOf: []string{"220", "230", "240"}},

	// Fixed assets group: gross cost plus negative accumulated depreciation.
	{Code: "220", Name: "Fixed assets", Level: 1, Section: SectionLongTermAssets,
		SumOf: []string{"221", "222", "223"}},
	{Code: "221", Name: "Tangible fixed assets, gross", Level: 2, Section: SectionLongTermAssets,
		Mappings: []AccountMapping{{Account: "211", Side: SideNet}}},
	{Code: "222", Name: "Investment property", Level: 2, Section: SectionLongTermAssets,
		Mappings: []AccountMapping{{Account: "217", Side: SideNet}}},
	{Code: "223", Name: "Accumulated depreciation", Level: 2, Section: SectionLongTermAssets,
		Mappings: []AccountMapping{{Account: "214", Side: SideCredit, Negative: true}}},

	{Code: "230", Name: "Construction in progress", Level: 1, Section: SectionLongTermAssets,
		Mappings: []AccountMapping{{Account: "241", Side: SideNet}}},
	{Code: "240", Name: "Long-term financial investments", Level: 1, Section: SectionLongTermAssets,
		Mappings: []AccountMapping{{Account: "228", Side: SideNet}}},

	{Code: "270", Name: "TOTAL ASSETS", Level: 0, Section: SectionLongTermAssets, IsTotal: true,
		SumOf: []string{"100", "200"}},

	// --- Liabilities ---
	{Code: "300", Name: "Liabilities", Level: 1, Section: SectionLiabilities, IsTotal: true,
		SumOf: []string{"310", "320"}},

	{Code: "310", Name: "Short-term liabilities", Level: 1, Section: SectionLiabilities,
		SumOf: []string{"311", "312", "313", "314", "315", "318", "319"}},
	{Code: "311", Name: "Trade payables to suppliers", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "331", Side: SideCredit}}},
	{Code: "312", Name: "Advances from customers", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "131", Side: SideCredit}}},
	{Code: "313", Name: "Taxes and amounts payable to the state", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "333", Side: SideCredit}}},
	{Code: "314", Name: "Payables to employees", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "334", Side: SideCredit}}},
	{Code: "315", Name: "Accrued expenses", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "335", Side: SideCredit}}},
	{Code: "318", Name: "Other payables", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{
			{Account: "336", Side: SideCredit},
			{Account: "338", Side: SideCredit},
		}},
	{Code: "319", Name: "Provisions and funds payable", Level: 2, Section: SectionLiabilities,
		Mappings: []AccountMapping{
			{Account: "352", Side: SideCredit},
			{Account: "353", Side: SideCredit},
		}},

	{Code: "320", Name: "Borrowings and finance lease liabilities", Level: 1, Section: SectionLiabilities,
		Mappings: []AccountMapping{{Account: "341", Side: SideCredit}}},

	// --- Equity ---
	{Code: "400", Name: "Owner's equity", Level: 1, Section: SectionEquity, IsTotal: true,
		SumOf: []string{"411", "413", "418", "421"}},
	{Code: "411", Name: "Owner's capital", Level: 2, Section: SectionEquity,
		Mappings: []AccountMapping{{Account: "411", Side: SideCredit}}},
	{Code: "413", Name: "Exchange rate differences", Level: 2, Section: SectionEquity,
		Mappings: []AccountMapping{{Account: "413", Side: SideNet}}},
	{Code: "418", Name: "Other equity funds", Level: 2, Section: SectionEquity,
		Mappings: []AccountMapping{{Account: "418", Side: SideCredit}}},
	// Retained earnings fold in the current period's unclosed profit and
	// loss activity, so a pre-closing book still balances.
	{Code: "421", Name: "Undistributed profit after tax", Level: 2, Section: SectionEquity,
		Mappings: []AccountMapping{
			{Account: "421", Side: SideNet},
			{Account: "511", Side: SideNet},
			{Account: "515", Side: SideNet},
			{Account: "521", Side: SideNet},
			{Account: "632", Side: SideNet},
			{Account: "635", Side: SideNet},
			{Account: "642", Side: SideNet},
			{Account: "711", Side: SideNet},
			{Account: "811", Side: SideNet},
			{Account: "821", Side: SideNet},
		}},

	{Code: "440", Name: "TOTAL LIABILITIES AND EQUITY", Level: 0, Section: SectionEquity, IsTotal: true,
		SumOf: []string{"300", "400"}},
}

// Template returns the statutory template lines in presentation order.
func Template() []TemplateLine {
	out := make([]TemplateLine, len(statutoryTemplate))
	copy(out, statutoryTemplate)
	return out
}
