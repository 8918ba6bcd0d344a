package decode

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/arcadia-data/preview/pkg/classify"
)

var codeFormatter = chromahtml.New(
	chromahtml.WithClasses(true),
	chromahtml.WithLineNumbers(true),
)

// Highlight renders source text as highlighted HTML. Lexer selection order:
// the language from the classify table, then a file-name match, then
// content-based detection, then plain text.
func Highlight(source, language, fileName string) (string, error) {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil && fileName != "" {
		lexer = lexers.Match(fileName)
	}
	if lexer == nil {
		if detected := classify.DetectLanguage(fileName, []byte(source)); detected != "" {
			lexer = lexers.Get(detected)
		}
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", newError(classify.FamilyCode, fmt.Sprintf("tokenise: %v", err))
	}

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	var sb strings.Builder
	if err := codeFormatter.Format(&sb, style, iterator); err != nil {
		return "", newError(classify.FamilyCode, fmt.Sprintf("format: %v", err))
	}
	return sb.String(), nil
}
