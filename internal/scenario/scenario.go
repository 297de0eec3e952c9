package scenario

import "strings"

// Scenario selects one of the three fixed conversation archetypes. It is
// immutable for the lifetime of a call session.
type Scenario string

const (
	Demo      Scenario = "demo"
	Interview Scenario = "interview"
	Payment   Scenario = "payment"
)

// All lists every known scenario in presentation order.
func All() []Scenario {
	return []Scenario{Demo, Interview, Payment}
}

// Parse maps a raw identifier onto a Scenario. Unknown identifiers fall back
// to Demo, which is the documented default arm for every scenario-keyed
// lookup in this package.
func Parse(raw string) Scenario {
	switch Scenario(strings.ToLower(strings.TrimSpace(raw))) {
	case Interview:
		return Interview
	case Payment:
		return Payment
	default:
		return Demo
	}
}

// Valid reports whether raw names a known scenario without applying the
// demo fallback.
func Valid(raw string) bool {
	switch Scenario(strings.ToLower(strings.TrimSpace(raw))) {
	case Demo, Interview, Payment:
		return true
	}
	return false
}

// Template is the immutable per-scenario record: persona, canned lines and
// the prompt template body.
type Template struct {
	Title       string
	PersonaName string
	Opening     string
	Closing     string
	Fallback    string
}

var templates = map[Scenario]Template{
	Demo: {
		Title:       "Product Demo Scheduling",
		PersonaName: "Parul Sharma",
		Opening:     "Namaskar! Main Parul Sharma bol rahi hoon TechSolutions se. Kya main aapse baat kar sakta hoon ERP system ke demo ke baare mein?",
		Closing:     "Thank you for your time! Main jaldi hi aapse demo scheduling ke liye contact karunga. Have a nice day!",
		Fallback:    "Aapka time dene ke liye dhanyavaad. Kya main aapko ERP demo ke baare mein kuch bata sakta hoon?",
	},
	Interview: {
		Title:       "Candidate Interviewing",
		PersonaName: "Priya Patel",
		Opening:     "Namaste! Main Priya Patel, HR manager. Aapka interview schedule kiya hai Software Engineer position ke liye. Kya abhi baat karna convenient hai?",
		Closing:     "Interview ke liye dhanyavaad. Humari team aapko result ke baare mein jald hi contact karegi.",
		Fallback:    "Aapka interview process mein aane ke liye dhanyavaad. Kya aap apne experience ke baare mein bata sakte hain?",
	},
	Payment: {
		Title:       "Payment Follow-up",
		PersonaName: "Amita Kumari",
		Opening:     "Namaste! Main Amita Kumari accounts department se baat kar rahi hoon. Aapke payment ke regarding follow up karna tha.",
		Closing:     "Baat karne ke liye dhanyavaad. Payment update ke liye wait kar rahe hain. Shubh din!",
		Fallback:    "Namaste, main accounts se baat kar raha hoon. Kya aap payment status update kar sakte hain?",
	},
}

const (
	genericOpening  = "Namaste! Main Apki kaise help kar sakti hoon?"
	genericClosing  = "Dhanyavaad! Have a nice day!"
	genericFallback = "Sorry, main aapki help kaise kar sakta hoon?"
)

// TemplateFor returns the scenario template. The demo template serves any
// unknown scenario value.
func TemplateFor(s Scenario) Template {
	if t, ok := templates[s]; ok {
		return t
	}
	return templates[Demo]
}

// Opening returns the scenario-fixed opening line, with a generic arm for
// unknown scenarios.
func Opening(s Scenario) string {
	if t, ok := templates[s]; ok {
		return t.Opening
	}
	return genericOpening
}

// Closing returns the scenario-fixed closing line.
func Closing(s Scenario) string {
	if t, ok := templates[s]; ok {
		return t.Closing
	}
	return genericClosing
}

// Fallback returns the canned Hinglish sentence used when generation fails.
func Fallback(s Scenario) string {
	if t, ok := templates[s]; ok {
		return t.Fallback
	}
	return genericFallback
}
