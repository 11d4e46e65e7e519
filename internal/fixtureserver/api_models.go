package fixtureserver

import "github.com/raysh454/addrmeta/internal/fetch"

// FetchRequest is one frame sent by a /ws/fetch client.
type FetchRequest struct {
	URL string `json:"url" example:"test:///plain/data/CH"`
}

// OutcomeFrame reports the result of fetching one URL. Data is only set on
// success.
type OutcomeFrame struct {
	Success bool   `json:"success" example:"true"`
	URL     string `json:"url" example:"test:///plain/data/CH"`
	Data    string `json:"data,omitempty" example:"{\"id\":\"data/CH\"}"`
	Error   string `json:"error,omitempty" example:""`
}

func newOutcomeFrame(o fetch.Outcome) OutcomeFrame {
	f := OutcomeFrame{Success: o.Success, URL: o.URL}
	if o.Success {
		f.Data = string(o.Data)
	} else if o.Err != nil {
		f.Error = o.Err.Error()
	}
	return f
}

// KeysResponse lists every record key in the dataset.
type KeysResponse struct {
	Keys []string `json:"keys" example:"data,data/CH"`
}

// RegionsResponse lists the region codes that have aggregates.
type RegionsResponse struct {
	Regions []string `json:"regions" example:"CH,US"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Records int    `json:"records" example:"51"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"missing url query parameter"`
}
