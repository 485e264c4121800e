package config

import (
	"gopkg.in/yaml.v3"
)

// Specification of cover image resizing mode.
// ENUM(none, keepAR, stretch)
type ImageResizeMode int

// Specification of requested export layout.
// ENUM(bundle, dir)
type OutputFmt int

// NOTE: yaml.v3 ignores encoding.TextUnmarshaler when decoding, so enum
// fields need explicit hooks.

func (x *ImageResizeMode) UnmarshalYAML(value *yaml.Node) error {
	return x.UnmarshalText([]byte(value.Value))
}

func (o *OutputFmt) UnmarshalYAML(value *yaml.Node) error {
	return o.UnmarshalText([]byte(value.Value))
}

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtBundle:
		return ".zip"
	case OutputFmtDir:
		return ""
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
