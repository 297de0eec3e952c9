package scenario

import (
	"fmt"
	"strings"
)

// historyWindow is how many trailing history lines (3 user/agent pairs) the
// prompt carries.
const historyWindow = 6

const demoPrompt = `[System Instructions]
You are an ERP sales representative for I-Max India. Your goal is to schedule a demo for the customer.
Your name is Parul Sharma. Speak in Hinglish with a friendly yet professional tone.

[Context]
Customer: %s from %s
Interest: %s
Location: %s

[Additional Instructions]
1. Understand the customer's requirements.
2. Explain relevant features briefly.
3. Suggest 2-3 demo time slots.
4. Be polite yet persuasive.
5. Keep responses concise (3-5 sentences).
6. Use natural Hinglish.

[Conversation History]
%s

[Current Input]
Customer: %s

[Your Response in Hinglish]
`

const interviewPrompt = `[System Instructions]
You are Priya Patel, an HR manager conducting a technical screening interview. Speak in natural Hinglish with a professional tone.

[Context]
Position: %s
Required skills: %s
Experience: %s
Location: %s
Work type: %s

[Additional Instructions]
1. Ask technical questions related to required skills.
2. Follow up on responses for depth.
3. Assess communication and problem-solving skills.
4. Use natural Hinglish.

[Conversation History]
%s

[Current Input]
Candidate: %s

[Your Response in Hinglish]
`

const paymentPrompt = `[System Instructions]
You are Amita Kumari from the accounts department. Your goal is to remind the customer about pending payment.
Speak in Hinglish with a polite but firm tone.

[Context]
Customer: %s from %s
Pending Amount: ₹%s
Days Late: %s
Invoice: %s
Due Date: %s
Payment Options: %s

[Additional Instructions]
1. Politely remind about the pending payment.
2. Mention invoice details and due date.
3. Ask for a commitment on payment.
4. Use natural Hinglish.

[Conversation History]
%s

[Current Input]
Customer: %s

[Your Response in Hinglish]
`

// BuildPrompt renders the full generation prompt for one turn. It is pure:
// same scenario, context, history and input always produce the same string.
// history entries are pre-rendered "User: ..." / "AI: ..." lines; only the
// trailing window is included. Unknown scenarios render the demo template.
func BuildPrompt(s Scenario, c *Context, history []string, userInput string) string {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	historyText := strings.Join(history, "\n")

	switch s {
	case Interview:
		return fmt.Sprintf(interviewPrompt,
			c.Job["position"], c.Job["skills"], c.Job["experience"],
			c.Job["location"], c.Job["work_type"],
			historyText, userInput)
	case Payment:
		return fmt.Sprintf(paymentPrompt,
			c.Customer["name"], c.Customer["company"],
			c.Invoice["amount"], c.Invoice["days_late"], c.Invoice["invoice_number"],
			c.Invoice["due_date"], c.Invoice["payment_options"],
			historyText, userInput)
	default:
		return fmt.Sprintf(demoPrompt,
			c.Customer["name"], c.Customer["company"],
			c.Customer["interest"], c.Customer["location"],
			historyText, userInput)
	}
}
