package client

// pageSize is fixed for the duration of one fetch operation; the paginator
// detects the last page by receiving fewer records than this.
const pageSize = 100

// filterParameter narrows a grid query to records matching a field
// predicate. ParsableValue is itself JSON-encoded, per the vendor's grid
// contract.
type filterParameter struct {
	FieldName     string `json:"fieldName"`
	FilterType    string `json:"filterType"`
	ParsableValue string `json:"parsableValue"`
}

// sortParameter orders grid results by one field.
type sortParameter struct {
	FieldName string `json:"fieldName"`
	Direction string `json:"direction"`
}

// gridQueryOptions is the vendor's filter/sort/paging descriptor. It is
// JSON-encoded and sent as the single queryOptions query parameter.
type gridQueryOptions struct {
	Query            string            `json:"query"`
	FilterParameters []filterParameter `json:"filterParameters"`
	SortParameters   []sortParameter   `json:"sortParameters"`
	PageSize         int               `json:"pageSize"`
	WhereParameters  []any             `json:"whereParameters"`
	PageNumber       int               `json:"pageNumber"`
}

// employeeGridQuery builds the query options for one page of the active
// employee roster: EmployeeStatus restricted to Active, sorted by
// EmployeeNumber ascending. WhereParameters stays non-nil so it encodes as
// [] rather than null.
func employeeGridQuery(page int) gridQueryOptions {
	return gridQueryOptions{
		Query: "",
		FilterParameters: []filterParameter{{
			FieldName:     "EmployeeStatus",
			FilterType:    "In",
			ParsableValue: `["Active"]`,
		}},
		SortParameters: []sortParameter{{
			FieldName: "EmployeeNumber",
			Direction: "Ascending",
		}},
		PageSize:        pageSize,
		WhereParameters: []any{},
		PageNumber:      page,
	}
}
