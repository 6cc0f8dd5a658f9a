package domain

// KeyPrefix namespaces every key the service touches in the store.
const KeyPrefix = "retriever:"

// CollectionType identifies one document category. Each type maps 1:1 to a
// physical collection in the vector store.
type CollectionType string

const (
	// CollectionEdgarFilings holds SEC EDGAR regulatory filings.
	CollectionEdgarFilings CollectionType = "edgar_filings"
	// CollectionEarningsCalls holds earnings-call transcripts.
	CollectionEarningsCalls CollectionType = "earnings_call_transcripts"
	// CollectionFinancialNews holds financial news articles.
	CollectionFinancialNews CollectionType = "financial_news"
	// CollectionInvestopedia holds reference articles.
	CollectionInvestopedia CollectionType = "investopedia"
	// CollectionMacroReports holds macroeconomic reports.
	CollectionMacroReports CollectionType = "macro_economic_reports"
)

// CollectionTypes returns the fixed enumeration of collection types, in
// sweep order.
func CollectionTypes() []CollectionType {
	return []CollectionType{
		CollectionEdgarFilings,
		CollectionEarningsCalls,
		CollectionFinancialNews,
		CollectionInvestopedia,
		CollectionMacroReports,
	}
}

// ParseCollectionType maps a string onto the enumeration. Returns false for
// anything outside it.
func ParseCollectionType(s string) (CollectionType, bool) {
	ct := CollectionType(s)
	for _, known := range CollectionTypes() {
		if ct == known {
			return ct, true
		}
	}
	return "", false
}

// CollectionName returns the physical collection name backing this type.
func (c CollectionType) CollectionName() string {
	return "vector_" + string(c)
}
