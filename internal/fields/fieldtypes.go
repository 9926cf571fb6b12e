package fields

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Fieldtype turns a raw stored value into the shape templates expect.
// Augment must never fail: values it cannot handle are returned unchanged.
type Fieldtype interface {
	Handle() string
	Augment(value any) any
}

// dateLayouts are tried in order when a date field holds a string
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var builtin = map[Type]Fieldtype{
	TypeText:     passthrough{handle: "text"},
	TypeTextarea: passthrough{handle: "textarea"},
	TypeMarkdown: markdownFieldtype{md: goldmark.New(goldmark.WithExtensions(extension.GFM))},
	TypeToggle:   toggleFieldtype{},
	TypeInteger:  integerFieldtype{},
	TypeDate:     dateFieldtype{},
	TypeList:     passthrough{handle: "list"},
	TypeEntries:  passthrough{handle: "entries"},
}

// FieldtypeFor returns the built-in fieldtype for a field type. Unknown types
// get a passthrough fieldtype.
func FieldtypeFor(t Type) Fieldtype {
	if ft, ok := builtin[t]; ok {
		return ft
	}
	return passthrough{handle: t.String()}
}

type passthrough struct {
	handle string
}

func (p passthrough) Handle() string        { return p.handle }
func (p passthrough) Augment(value any) any { return value }

type markdownFieldtype struct {
	md goldmark.Markdown
}

func (markdownFieldtype) Handle() string { return "markdown" }

func (m markdownFieldtype) Augment(value any) any {
	src, ok := value.(string)
	if !ok {
		return value
	}

	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return value
	}
	return buf.String()
}

type toggleFieldtype struct{}

func (toggleFieldtype) Handle() string { return "toggle" }

func (toggleFieldtype) Augment(value any) any {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		default:
			return false
		}
	default:
		return value
	}
}

type integerFieldtype struct{}

func (integerFieldtype) Handle() string { return "integer" }

func (integerFieldtype) Augment(value any) any {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return value
		}
		return n
	default:
		return value
	}
}

type dateFieldtype struct{}

func (dateFieldtype) Handle() string { return "date" }

func (dateFieldtype) Augment(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return value
}
