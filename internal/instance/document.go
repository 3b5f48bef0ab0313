package instance

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/hugo-lorenzo-mato/devtools/internal/core"
	"github.com/hugo-lorenzo-mato/devtools/internal/logging"
	"github.com/hugo-lorenzo-mato/devtools/internal/toolconfig"
)

const rootElement = "InstanceState"

// Attributes of the flat layout written before configurations were stored as
// child elements.
const (
	legacyNameAttr         = "name"
	legacyLastSelectedAttr = "lastSelectedContentNodeId"
	legacyExpandedAttr     = "expandedGroupNodeIds"
)

// versionAttr only appears on current documents.
const versionAttr = "version"

type rawElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []rawElement `xml:",any"`
}

// DecodeDocument reads an instance state document. The root element name is
// not checked, so that a state nested under a host component element still
// decodes. Documents in the legacy flat layout are upgraded on the fly.
func DecodeDocument(r io.Reader, logger *logging.Logger) (*InstanceState, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading instance state: %w", err)
	}

	var raw rawElement
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, core.ErrStorage(core.CodeStateCorrupted, "instance state is not valid XML").WithCause(err)
	}
	if isLegacyDocument(&raw) {
		return upgradeLegacyDocument(&raw, logging.OrNop(logger)), nil
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, core.ErrStorage(core.CodeStateCorrupted, "instance state has no root element").WithCause(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		start.Name = xml.Name{Local: rootElement}

		var state InstanceState
		if err := dec.DecodeElement(&state, &start); err != nil {
			return nil, core.ErrStorage(core.CodeStateCorrupted, "decoding instance state").WithCause(err)
		}
		return &state, nil
	}
}

// EncodeDocument writes state as an indented XML document.
func EncodeDocument(w io.Writer, state *InstanceState) error {
	if state == nil {
		state = &InstanceState{}
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("encoding instance state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// MarshalDocument is EncodeDocument into a byte slice.
func MarshalDocument(state *InstanceState) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument is DecodeDocument from a byte slice.
func UnmarshalDocument(data []byte, logger *logging.Logger) (*InstanceState, error) {
	return DecodeDocument(bytes.NewReader(data), logger)
}

// isLegacyDocument reports whether raw uses the flat layout. A current
// document without configurations has no children either, so only attributes
// the current layout never writes count.
func isLegacyDocument(raw *rawElement) bool {
	if len(raw.Children) > 0 {
		return false
	}
	if lo.ContainsBy(raw.Attrs, func(a xml.Attr) bool { return a.Name.Local == versionAttr }) {
		return false
	}
	return lo.ContainsBy(raw.Attrs, func(a xml.Attr) bool {
		switch a.Name.Local {
		case legacyNameAttr, legacyLastSelectedAttr:
			return false
		}
		return true
	})
}

// upgradeLegacyDocument turns every "<toolId>.<key>" attribute into a
// configuration property, one configuration per tool id.
func upgradeLegacyDocument(raw *rawElement, logger *logging.Logger) *InstanceState {
	state := &InstanceState{}
	byTool := make(map[string][]PropertyState)

	for _, attr := range raw.Attrs {
		switch attr.Name.Local {
		case legacyNameAttr:
		case legacyLastSelectedAttr:
			state.LastSelectedContentNodeID = lo.ToPtr(attr.Value)
		case legacyExpandedAttr:
			state.ExpandedGroupNodeIDs = lo.Compact(lo.Map(strings.Split(attr.Value, ","),
				func(s string, _ int) string { return strings.TrimSpace(s) }))
		default:
			toolID, key, ok := strings.Cut(attr.Name.Local, ".")
			if !ok || toolID == "" || key == "" {
				logger.Debug("dropping legacy attribute", "attribute", attr.Name.Local)
				continue
			}
			byTool[toolID] = append(byTool[toolID], PropertyState{
				Key:   lo.ToPtr(key),
				Value: lo.ToPtr(attr.Value),
				Type:  lo.ToPtr(toolconfig.TypeConfiguration.String()),
			})
		}
	}

	toolIDs := lo.Keys(byTool)
	sort.Strings(toolIDs)
	for _, toolID := range toolIDs {
		state.Configurations = append(state.Configurations, ConfigurationState{
			DeveloperToolID: lo.ToPtr(toolID),
			ID:              lo.ToPtr(uuid.NewString()),
			Name:            lo.ToPtr(DefaultConfigurationName),
			Properties:      &PropertiesState{Properties: byTool[toolID]},
		})
	}
	logger.Info("upgraded legacy instance state", "configurations", len(state.Configurations))
	return state
}
