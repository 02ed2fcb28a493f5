package models

// Requests for the dashboard HTTP endpoints.

type SessionRequest struct {
	ID string `param:"id" validate:"required"`
}

type FormRequest struct {
	ID     string  `param:"id" validate:"required"`
	Ticker *string `json:"ticker"`
	Date   *string `json:"date"`
}

type RangeRequest struct {
	ID    string `param:"id" validate:"required"`
	Range string `json:"range" validate:"required,oneof=week month year"`
}

type FilterRequest struct {
	ID     string `param:"id" validate:"required"`
	Filter string `json:"filter" validate:"required,oneof=all positive neutral negative"`
}
