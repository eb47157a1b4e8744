package field

// Handler turns a raw value into a display model and a form binding. Both
// methods must be pure functions of their inputs.
type Handler interface {
	DisplayData(value any, opts Options) (Display, error)
	FormBinding(value any, opts Options) Binding
}

// HandlerFuncs adapts a pair of functions to Handler. A nil FormBindingFunc
// falls back to a plain text input.
type HandlerFuncs struct {
	DisplayFunc     func(value any, opts Options) (Display, error)
	FormBindingFunc func(value any, opts Options) Binding
}

// DisplayData implements Handler.
func (h HandlerFuncs) DisplayData(value any, opts Options) (Display, error) {
	if h.DisplayFunc == nil {
		return textDisplay(TypeText, value), nil
	}
	return h.DisplayFunc(value, opts)
}

// FormBinding implements Handler.
func (h HandlerFuncs) FormBinding(value any, opts Options) Binding {
	if h.FormBindingFunc == nil {
		return inputBinding(value, opts)
	}
	return h.FormBindingFunc(value, opts)
}

// Display is the rendered form of a value.
type Display struct {
	Type    Type      `json:"type"`
	Text    string    `json:"text"`
	HTML    string    `json:"html,omitempty"`
	Link    string    `json:"link,omitempty"`
	Style   *Style    `json:"style,omitempty"`
	Items   []Display `json:"items,omitempty"`
	Entries []Entry   `json:"entries,omitempty"`
	Empty   bool      `json:"empty,omitempty"`
}

// Style carries presentation hints for badges and state indicators.
type Style struct {
	TextColor       string `json:"textColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Icon            string `json:"icon,omitempty"`
	IconColor       string `json:"iconColor,omitempty"`
	Shape           string `json:"shape,omitempty"`
}

// Entry is one key/value pair of a dictionary display.
type Entry struct {
	Key   string  `json:"key"`
	Value Display `json:"value"`
}

// Form controls used by Binding.Control. The editor names match the widget
// identifiers form renderers already understand.
const (
	ControlInput      = "input"
	ControlTextarea   = "textarea"
	ControlToggle     = "toggle"
	ControlSelect     = "select"
	ControlChips      = "chips"
	ControlDatetime   = "datetime"
	ControlCodeEditor = "code-editor"
	ControlJSONEditor = "json-editor"
	ControlKeyValue   = "key-value"
)

// Binding describes how a value is edited.
type Binding struct {
	Control     string   `json:"control"`
	InputType   string   `json:"inputType,omitempty"`
	Value       any      `json:"value"`
	Choices     []Choice `json:"choices,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
	ReadOnly    bool     `json:"readOnly,omitempty"`
}

// Choice is a selectable option.
type Choice struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Resolved is a field after resolution: its display, its binding and any error
// met on the way. Err never prevents the other members from being populated.
type Resolved struct {
	Field   Field   `json:"field"`
	Label   string  `json:"label"`
	Value   any     `json:"value"`
	Display Display `json:"display"`
	Binding Binding `json:"binding"`
	Err     error   `json:"-"`
	Error   string  `json:"error,omitempty"`
}
