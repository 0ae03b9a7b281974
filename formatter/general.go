package formatter

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{.Header}}{{.Snippet}}{{.PlainMessage}}{{.Suggestion}}{{.Note}}
`
}

// ClosingCommentFormatter tags the message with the violation code so that
// `endlint fix --only` selections can be read off the report.
type ClosingCommentFormatter struct{}

func (f *ClosingCommentFormatter) IssueTemplate() string {
	return `{{.Header}}{{.Snippet}}{{.CodedMessage}}{{.Suggestion}}{{.Note}}
`
}
