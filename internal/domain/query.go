package domain

// SearchQuery - параметры одного запроса к поисковому API.
// Значения передаются в API как есть, без валидации.
type SearchQuery struct {
	Term     Optional[string]
	FromDate Optional[string]
}

func NewSearchQuery(term, fromDate string) SearchQuery {
	return SearchQuery{
		Term:     OptionalString(term),
		FromDate: OptionalString(fromDate),
	}
}

// ActiveTerm - Some("") считаем отсутствующим
func (q SearchQuery) ActiveTerm() (string, bool) {
	term, ok := q.Term.Get()
	return term, ok && term != ""
}

func (q SearchQuery) ActiveFromDate() (string, bool) {
	date, ok := q.FromDate.Get()
	return date, ok && date != ""
}
