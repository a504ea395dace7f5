package parse

import (
	"strings"

	"github.com/dvloznov/expensebot/internal/taxonomy"
)

// buildExtractionPrompt renders the transaction-extraction instructions for
// one user message. The contract is two-branch: the model answers either a
// JSON list of transaction objects or the literal chat signal, never prose.
func buildExtractionPrompt(userText string) string {
	var b strings.Builder

	b.WriteString("You are a Data Extraction API for a personal expense tracker.\n")
	b.WriteString("User Input: \"" + userText + "\"\n\n")

	b.WriteString("Task: extract ALL transactions in the input into a JSON LIST.\n")
	b.WriteString("If the input is conversational or a question and contains NO transaction data,\n")
	b.WriteString("output exactly: {\"action\": \"chat\"}\n\n")

	b.WriteString("Each transaction object has these fields:\n")
	b.WriteString("- \"action\": \"add\" or \"delete\"\n")
	b.WriteString("- \"i\": item name, string\n")
	b.WriteString("- \"a\": amount, number, or a division expression as a string like \"1200/3\"\n")
	b.WriteString("- \"c\": category, string\n")
	b.WriteString("- \"n\": note, string\n\n")

	b.WriteString("RULES for \"n\" (note/context):\n")
	b.WriteString("- CHECK: does the input contain the marker \"save c\" or \"context\"?\n")
	b.WriteString("- IF YES: extract the context description (e.g. \"for dinner\", \"with team\") into \"n\".\n")
	b.WriteString("- IF NO: \"n\" must be the empty string \"\".\n\n")

	b.WriteString("RULES for \"c\" (category):\n")
	b.WriteString("- Use EXACTLY one of: " + taxonomy.PromptList() + "\n")
	b.WriteString("- If the user says \"Owe\", \"Payable\", \"Will pay\", \"Give [person]\" (future tense) -> \"Debt\".\n")
	b.WriteString("- If the user says \"Lent\", \"Given\", \"Gave\" (past tense) -> \"Loan Given\".\n")
	b.WriteString("- Otherwise -> the thematic category, or \"" + taxonomy.Default + "\" as last resort.\n\n")

	b.WriteString("RULES for \"a\" (amount):\n")
	b.WriteString("- POSITIVE (+): expense, lending, debt (money leaves the user).\n")
	b.WriteString("- NEGATIVE (-): income, repayment received (money comes to the user).\n")
	b.WriteString("- Shared expenses like \"1200 split 3 ways\" become the string \"1200/3\"; never compute the division yourself.\n\n")

	b.WriteString("For \"delete\" actions only \"i\" and \"a\" are required.\n\n")

	b.WriteString("Output ONLY valid raw JSON. No comments, no Markdown, no code fences.\n")
	b.WriteString("Example output:\n")
	b.WriteString("[{\"action\": \"add\", \"i\": \"Item\", \"a\": 100, \"c\": \"Category\", \"n\": \"\"}]\n")

	return b.String()
}
