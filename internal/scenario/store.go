package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Context carries the field data a prompt interpolates: customer fields for
// demo/payment, job fields for interview, invoice fields for payment. All
// three sets are always populated so session metadata can snapshot them.
type Context struct {
	Scenario Scenario
	Customer map[string]string
	Job      map[string]string
	Invoice  map[string]string
}

// Store resolves scenario contexts: built-in defaults shallow-merged with an
// optional per-scenario override file under DataDir.
type Store struct {
	DataDir string
	// OnStatus receives advisory messages (override loaded, override bad).
	// Never required.
	OnStatus func(msg string)
}

// NewStore creates a Store reading override files from dataDir.
func NewStore(dataDir string, onStatus func(string)) *Store {
	return &Store{DataDir: dataDir, OnStatus: onStatus}
}

func defaultCustomer() map[string]string {
	return map[string]string{
		"name":     "Customer",
		"company":  "ABC Corp",
		"interest": "ERP system",
		"email":    "customer@example.com",
		"phone":    "+91 98765 43210",
		"location": "Mumbai",
	}
}

func defaultJob() map[string]string {
	return map[string]string{
		"position":   "Software Engineer",
		"skills":     "Python, React, Cloud",
		"experience": "3-5 years",
		"salary":     "30-35 LPA",
		"location":   "Bangalore",
		"work_type":  "Hybrid",
	}
}

func defaultInvoice() map[string]string {
	return map[string]string{
		"amount":          "13,50,000",
		"days_late":       "25",
		"invoice_number":  "INV-2023-045",
		"due_date":        "15th March 2025",
		"payment_options": "UPI, NEFT, Cheque",
	}
}

// overrideFile is the on-disk shape: each key either a single object or a
// non-empty array whose first element is used.
type overrideFile struct {
	Customer json.RawMessage `json:"customer"`
	Job      json.RawMessage `json:"job"`
	Invoice  json.RawMessage `json:"invoice"`
}

// Load returns the context for s: defaults first, then any override file
// merged on top. Override problems are advisory only; the defaults always
// come back and no error escapes.
func (st *Store) Load(s Scenario) *Context {
	ctx := &Context{
		Scenario: s,
		Customer: defaultCustomer(),
		Job:      defaultJob(),
		Invoice:  defaultInvoice(),
	}

	path := filepath.Join(st.DataDir, fmt.Sprintf("%s_data.json", s))
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			st.status(fmt.Sprintf("Could not load scenario data: %v", err))
		}
		return ctx
	}

	var ov overrideFile
	if err := json.Unmarshal(raw, &ov); err != nil {
		st.status(fmt.Sprintf("Could not load scenario data: %v", err))
		return ctx
	}

	mergeSection(ctx.Customer, ov.Customer)
	mergeSection(ctx.Job, ov.Job)
	mergeSection(ctx.Invoice, ov.Invoice)

	st.status(fmt.Sprintf("Loaded custom data for %s scenario", s))
	return ctx
}

// mergeSection shallow-merges an override section into dst. The section may
// be a JSON object or an array whose first element is the object; anything
// else is ignored.
func mergeSection(dst map[string]string, raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}

	var obj map[string]string
	if err := json.Unmarshal(raw, &obj); err == nil {
		for k, v := range obj {
			dst[k] = v
		}
		return
	}

	var list []map[string]string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		for k, v := range list[0] {
			dst[k] = v
		}
	}
}

func (st *Store) status(msg string) {
	if st.OnStatus != nil {
		st.OnStatus(msg)
	}
}

// Describe renders the scenario-information panel text.
func (c *Context) Describe() string {
	switch c.Scenario {
	case Interview:
		return fmt.Sprintf("Interview for: %s\nSkills: %s\nExperience: %s",
			c.Job["position"], c.Job["skills"], c.Job["experience"])
	case Payment:
		return fmt.Sprintf("Payment due: ₹%s\nDays late: %s\nInvoice: %s",
			c.Invoice["amount"], c.Invoice["days_late"], c.Invoice["invoice_number"])
	case Demo:
		return fmt.Sprintf("Demo Scenario: %s from %s interested in %s",
			c.Customer["name"], c.Customer["company"], c.Customer["interest"])
	default:
		return "No information available for this scenario"
	}
}
