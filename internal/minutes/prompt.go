package minutes

// The instruction pair is fixed: the system message describes the output
// shape, the user message embeds the transcript verbatim after the
// preamble sentence.

const systemMessage = "You are an assistant that produces minutes of meetings from transcripts, " +
	"with summary, key discussion points, takeaways, and action items with owners, in markdown."

const userPreamble = "Below is an extract transcript of an Enterprise Data Cataloging and Marketplace teams meeting. " +
	"Please write minutes in markdown, including a summary with attendees, location, and date; " +
	"discussion points; takeaways; and action items with owners.\n"

// Prompt is the ordered pair of role-tagged instructions submitted to a
// generation backend.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt composes the two instruction messages for a transcript.
func BuildPrompt(transcript string) Prompt {
	return Prompt{
		System: systemMessage,
		User:   userPreamble + transcript,
	}
}

// Combined flattens the prompt for backends without chat roles.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}
