package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SyncPayload is the legacy full-database document exchanged with the
// spreadsheet backend. Nil slices mean "not present" and are skipped.
type SyncPayload struct {
	Batches       []Batch           `json:"batches"`
	Inventory     []InventoryItem   `json:"inventory"`
	FinishedGoods []FinishedGood    `json:"finishedGoods"`
	DailyCosts    []DailyCostMetric `json:"dailyCosts"`
	Customers     []Customer        `json:"customers"`
}

// textKeys are the identifier columns the legacy client may send as bare
// JSON numbers. They are decoded into their sheet text form.
var textKeys = []string{"id", "referenceId", "batchId", "farmBatchId", "contact"}

type payloadAlias SyncPayload

// UnmarshalJSON accepts numeric identifiers in place of strings so that
// {"id":100} and {"id":"100"} address the same row.
func (p *SyncPayload) UnmarshalJSON(data []byte) error {
	var tables map[string]json.RawMessage
	if err := json.Unmarshal(data, &tables); err != nil {
		return err
	}
	for name, raw := range tables {
		var rows []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			continue
		}
		changed := false
		for _, row := range rows {
			for _, key := range textKeys {
				v, ok := row[key]
				if !ok {
					continue
				}
				text, ok := numberText(v)
				if !ok {
					continue
				}
				quoted, err := json.Marshal(text)
				if err != nil {
					return fmt.Errorf("%s.%s: %w", name, key, err)
				}
				row[key] = quoted
				changed = true
			}
		}
		if !changed {
			continue
		}
		fixed, err := json.Marshal(rows)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		tables[name] = fixed
	}

	normalised, err := json.Marshal(tables)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalised, (*payloadAlias)(p))
}

// numberText renders a JSON number literal the way a sheet cell shows it:
// integers verbatim, everything else in shortest decimal form.
func numberText(raw json.RawMessage) (string, bool) {
	lit := strings.TrimSpace(string(raw))
	if lit == "" || (lit[0] != '-' && (lit[0] < '0' || lit[0] > '9')) {
		return "", false
	}
	if !strings.ContainsAny(lit, ".eE") {
		return lit, true
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// SyncRequest is the body accepted by the legacy sync endpoint.
type SyncRequest struct {
	Action  string      `json:"action"`
	Payload SyncPayload `json:"payload"`
}

// Legacy sync actions.
const (
	ActionSyncFullDB = "SYNC_FULL_DB"
	ActionGetFullDB  = "GET_FULL_DB"
)

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}
