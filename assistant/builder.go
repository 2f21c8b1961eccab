package assistant

import (
	"strings"

	"github.com/DachengChen/askSQL/db"
)

// Builder renders the SQL generation prompt.
type Builder struct {
	Templates TemplateSource
	// Dialect names the SQL flavour the model must write, e.g. "PostgreSQL".
	Dialect string
}

// Build loads the instruction and examples templates, fills in the
// schema, examples and dialect, and appends the question so that the
// prompt ends inside an opened sql code block.
func (b *Builder) Build(schema db.Schema, question string) (string, error) {
	templates := b.Templates
	if templates == nil {
		templates = Inline{}
	}
	instructions, err := templates.Load(SQLTemplate)
	if err != nil {
		return "", err
	}
	examples, err := templates.Load(ExamplesTemplate)
	if err != nil {
		return "", err
	}

	r := strings.NewReplacer(
		"$database_info", schema.Text(),
		"$examples", examples,
		"$dialect", b.Dialect,
	)
	return r.Replace(instructions) + "\nInput:\n" + question + "\nOutput:\n```sql", nil
}
