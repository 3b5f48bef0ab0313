package config

// DefaultConfigYAML contains the default configuration YAML content written by
// `devtools config init`.
const DefaultConfigYAML = `# Developer Tools configuration
#
# Values not specified here use the built-in defaults.

general:
  # Persist tool settings such as the selected algorithm.
  save_configurations: true
  # Persist text entered into tool editors.
  save_inputs: true
  # Persist secrets such as HMAC keys. Off by default.
  save_sensitive_inputs: false
  # Fill new and reset tools with example values.
  load_examples: true

log:
  # debug | info | warn | error
  level: info
  # auto | text | json
  format: auto

state:
  # xml | sqlite
  backend: xml
  # sqlite database, defaults to <dir>/state.db
  # db_path: ~/.config/devtools/state/state.db
  backup: true
  # dialog | tool-window | application
  scope: tool-window
`
