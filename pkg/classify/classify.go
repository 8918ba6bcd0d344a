// Package classify maps file names to a format family and transport mode.
// Classification is pure and total: every file name maps to exactly one
// family, with unknown extensions degrading to plain text rendered through
// the code viewer.
package classify

import (
	"path"
	"strings"

	enry "github.com/go-enry/go-enry/v2"
)

// FormatFamily is the classification bucket that selects a typed viewer.
type FormatFamily string

const (
	FamilyAudio     FormatFamily = "audio"
	FamilyImage     FormatFamily = "image"
	FamilyVideo     FormatFamily = "video"
	FamilyCsv       FormatFamily = "csv"
	FamilyXlsx      FormatFamily = "xlsx"
	FamilyDocx      FormatFamily = "docx"
	FamilyPdf       FormatFamily = "pdf"
	FamilyJson      FormatFamily = "json"
	FamilyMarkdown  FormatFamily = "markdown"
	FamilyHtml      FormatFamily = "html"
	FamilyCode      FormatFamily = "code"
	FamilyPlainText FormatFamily = "text"
)

// TransportMode describes how an artifact's bytes are obtained.
type TransportMode string

const (
	// TransportText fetches eagerly and decodes the payload as UTF-8 text.
	TransportText TransportMode = "text"
	// TransportBlob fetches eagerly and keeps the payload as opaque bytes.
	TransportBlob TransportMode = "blob"
	// TransportBinary fetches eagerly for binary decoders (XLSX, DOCX).
	TransportBinary TransportMode = "binary"
	// TransportDeferred skips the shared fetcher entirely; the viewer
	// manages its own loading. Only the PDF viewer uses this.
	TransportDeferred TransportMode = "deferred"
)

// Classification is the result of classifying a file name.
type Classification struct {
	Family    FormatFamily
	Transport TransportMode
	// Language is the highlighting language for code files, empty for
	// plain text and non-code families.
	Language string
}

// Closed extension lists per family. These are part of the observable
// contract: the download package consults them to decide whether a file
// opens in the browser or forces a download.
var (
	AudioExtensions = []string{"mp3", "wav", "ogg", "oga", "flac", "m4a", "aac"}
	ImageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp", "svg", "ico", "tiff"}
	VideoExtensions = []string{"mp4", "webm", "mov", "mkv", "avi", "m4v"}

	// BrowserRenderableExtensions lists extensions a browser can display
	// natively; downloads of anything else are forced as attachments.
	BrowserRenderableExtensions = []string{
		"pdf", "html", "htm", "txt", "json", "md",
		"png", "jpg", "jpeg", "gif", "webp", "svg",
		"mp3", "wav", "ogg", "mp4", "webm",
	}
)

// languageByExtension maps code extensions to highlighting language names.
var languageByExtension = map[string]string{
	"go":    "go",
	"py":    "python",
	"js":    "javascript",
	"jsx":   "jsx",
	"ts":    "typescript",
	"tsx":   "tsx",
	"java":  "java",
	"rb":    "ruby",
	"rs":    "rust",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"php":   "php",
	"pl":    "perl",
	"swift": "swift",
	"kt":    "kotlin",
	"scala": "scala",
	"r":     "r",
	"sh":    "bash",
	"bash":  "bash",
	"zsh":   "bash",
	"ps1":   "powershell",
	"sql":   "sql",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"xml":   "xml",
	"ini":   "ini",
	"proto": "protobuf",
	"tex":   "latex",
	"lua":   "lua",
	"vim":   "vimscript",
	"hs":    "haskell",
	"ex":    "elixir",
	"exs":   "elixir",
	"erl":   "erlang",
	"clj":   "clojure",
	"ml":    "ocaml",
	"dart":  "dart",
	"zig":   "zig",
	"css":   "css",
	"scss":  "scss",
	"less":  "less",
	"vue":   "vue",
	"tf":    "terraform",
}

// wholeNameMatches are checked before extension matching. Keys are
// lower-cased base names.
var wholeNameMatches = map[string]Classification{
	"dockerfile": {Family: FamilyCode, Transport: TransportText, Language: "docker"},
	"makefile":   {Family: FamilyCode, Transport: TransportText, Language: "makefile"},
	"readme":     {Family: FamilyMarkdown, Transport: TransportText},
	"changelog":  {Family: FamilyMarkdown, Transport: TransportText},
	"license":    {Family: FamilyPlainText, Transport: TransportText},
	"notice":     {Family: FamilyPlainText, Transport: TransportText},
}

// Classify maps a file name to its format family and transport mode. The
// extension is the substring after the last dot, lower-cased, so
// multi-dot names like archive.vcf.gz classify on "gz" only; compound
// suffixes must be tested explicitly with HasSuffix before calling.
func Classify(fileName string) Classification {
	base := strings.ToLower(path.Base(strings.TrimSpace(fileName)))
	if c, ok := wholeNameMatches[base]; ok {
		return c
	}
	if override, ok := lookupOverride(base); ok {
		return override
	}

	ext := Extension(base)
	switch {
	case has(AudioExtensions, ext):
		return Classification{Family: FamilyAudio, Transport: TransportBlob}
	case has(ImageExtensions, ext):
		return Classification{Family: FamilyImage, Transport: TransportBlob}
	case has(VideoExtensions, ext):
		return Classification{Family: FamilyVideo, Transport: TransportBlob}
	}

	switch ext {
	case "csv", "tsv":
		return Classification{Family: FamilyCsv, Transport: TransportText}
	case "xlsx", "xls":
		return Classification{Family: FamilyXlsx, Transport: TransportBinary}
	case "docx":
		return Classification{Family: FamilyDocx, Transport: TransportBinary}
	case "pdf":
		return Classification{Family: FamilyPdf, Transport: TransportDeferred}
	case "json", "jsonl", "geojson":
		return Classification{Family: FamilyJson, Transport: TransportText}
	case "md", "markdown":
		return Classification{Family: FamilyMarkdown, Transport: TransportText}
	case "html", "htm":
		return Classification{Family: FamilyHtml, Transport: TransportText}
	}

	if lang, ok := languageByExtension[ext]; ok {
		return Classification{Family: FamilyCode, Transport: TransportText, Language: lang}
	}

	// Unknown extensions degrade to the code viewer with no highlighting.
	return Classification{Family: FamilyPlainText, Transport: TransportText}
}

// Extension returns the lower-cased substring after the last dot of name,
// or "" when the name has no dot (or ends with one).
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// DetectLanguage guesses a highlighting language from the file name and,
// when available, its content. The extension table wins; enry is the
// fallback for extensionless or unknown names.
func DetectLanguage(fileName string, content []byte) string {
	if lang, ok := languageByExtension[Extension(strings.ToLower(fileName))]; ok {
		return lang
	}
	if len(content) > 0 {
		if lang := enry.GetLanguage(fileName, content); lang != "" {
			return strings.ToLower(lang)
		}
	}
	return ""
}

// BrowserRenderable reports whether a browser can display the file inline.
func BrowserRenderable(fileName string) bool {
	return has(BrowserRenderableExtensions, Extension(strings.ToLower(fileName)))
}

func has(list []string, ext string) bool {
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}
