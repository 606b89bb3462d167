package eia

import (
	"encoding/json"
	"strconv"
	"strings"
)

// query is serialised into the X-Params header.
type query struct {
	Frequency string              `json:"frequency,omitempty"`
	Data      []string            `json:"data,omitempty"`
	Facets    map[string][]string `json:"facets,omitempty"`
	Start     string              `json:"start"`
	End       string              `json:"end"`
	Sort      []sortSpec          `json:"sort,omitempty"`
	Offset    int                 `json:"offset"`
	Length    int                 `json:"length"`
}

type sortSpec struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

type response struct {
	Response struct {
		Total total    `json:"total"`
		Data  []record `json:"data"`
	} `json:"response"`
}

type record struct {
	Period string          `json:"period"`
	Value  json.RawMessage `json:"value"`
}

// total is reported either as a number or as a numeric string.
type total string

func (t *total) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		s = ""
	}
	*t = total(s)
	return nil
}

func (t total) Int() (int, error) {
	if t == "" {
		return 0, nil
	}
	return strconv.Atoi(string(t))
}
