package codec

import (
	"fmt"
	"io"

	"atelier/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles hand-editable YAML import/export.
// Timestamps are not carried; the store assigns them on import.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the encoding
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlFragment represents the YAML structure for a space
type yamlFragment struct {
	Space  *yamlSpace  `yaml:"space,omitempty"`
	Blocks []yamlBlock `yaml:"blocks"`
	Links  []yamlLink  `yaml:"links"`
}

type yamlSpace struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Theme string `yaml:"theme,omitempty"`
	Color string `yaml:"color,omitempty"`
}

type yamlBlock struct {
	ID       string        `yaml:"id,omitempty"`
	X        float64       `yaml:"x"`
	Y        float64       `yaml:"y"`
	XGlobal  *float64      `yaml:"x_global,omitempty"`
	YGlobal  *float64      `yaml:"y_global,omitempty"`
	Shape    string        `yaml:"shape,omitempty"`
	Color    string        `yaml:"color,omitempty"`
	Width    float64       `yaml:"width,omitempty"`
	Height   float64       `yaml:"height,omitempty"`
	Title    string        `yaml:"title,omitempty"`
	Contents []yamlContent `yaml:"contents,omitempty"`
}

type yamlContent struct {
	ID       string         `yaml:"id,omitempty"`
	Type     string         `yaml:"type"`
	Body     string         `yaml:"body"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type yamlLink struct {
	ID         string  `yaml:"id,omitempty"`
	Source     string  `yaml:"source"`
	Target     string  `yaml:"target"`
	Type       string  `yaml:"type,omitempty"`
	Weight     float64 `yaml:"weight,omitempty"`
	Validation string  `yaml:"validation,omitempty"`
}

// Parse imports a fragment from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Fragment, error) {
	var yf yamlFragment
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fragment := domain.NewFragment()

	if yf.Space != nil {
		fragment.Space = &domain.Space{
			ID:    yf.Space.ID,
			Name:  yf.Space.Name,
			Theme: yf.Space.Theme,
			Color: domain.Color(yf.Space.Color),
		}
	}

	// Convert blocks; content order follows document order
	for _, yb := range yf.Blocks {
		block := domain.Block{
			ID:      yb.ID,
			X:       yb.X,
			Y:       yb.Y,
			XGlobal: yb.XGlobal,
			YGlobal: yb.YGlobal,
			Shape:   domain.Shape(yb.Shape),
			Color:   domain.Color(yb.Color),
			Width:   yb.Width,
			Height:  yb.Height,
			Title:   yb.Title,
		}
		for i, yc := range yb.Contents {
			block.Contents = append(block.Contents, domain.Content{
				ID:       yc.ID,
				BlockID:  yb.ID,
				Type:     domain.ContentType(yc.Type),
				Body:     yc.Body,
				Metadata: yc.Metadata,
				Order:    i,
			})
		}
		fragment.AddBlock(block)
	}

	// Convert links
	for _, yl := range yf.Links {
		fragment.AddLink(domain.Link{
			ID:         yl.ID,
			SourceID:   yl.Source,
			TargetID:   yl.Target,
			Type:       domain.LinkType(yl.Type),
			Weight:     yl.Weight,
			Validation: domain.Validation(yl.Validation),
		})
	}

	return fragment, nil
}

// Export exports a fragment to YAML
func (c *YAMLCodec) Export(fragment *domain.Fragment, w io.Writer) error {
	yf := yamlFragment{
		Blocks: make([]yamlBlock, 0, len(fragment.Blocks)),
		Links:  make([]yamlLink, 0, len(fragment.Links)),
	}

	if s := fragment.Space; s != nil {
		yf.Space = &yamlSpace{ID: s.ID, Name: s.Name, Theme: s.Theme, Color: string(s.Color)}
	}

	for _, b := range fragment.Blocks {
		yb := yamlBlock{
			ID:      b.ID,
			X:       b.X,
			Y:       b.Y,
			XGlobal: b.XGlobal,
			YGlobal: b.YGlobal,
			Shape:   string(b.Shape),
			Color:   string(b.Color),
			Width:   b.Width,
			Height:  b.Height,
			Title:   b.Title,
		}
		for _, content := range b.Contents {
			yb.Contents = append(yb.Contents, yamlContent{
				ID:       content.ID,
				Type:     string(content.Type),
				Body:     content.Body,
				Metadata: content.Metadata,
			})
		}
		yf.Blocks = append(yf.Blocks, yb)
	}

	for _, l := range fragment.Links {
		yf.Links = append(yf.Links, yamlLink{
			ID:         l.ID,
			Source:     l.SourceID,
			Target:     l.TargetID,
			Type:       string(l.Type),
			Weight:     l.Weight,
			Validation: string(l.Validation),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yf); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
