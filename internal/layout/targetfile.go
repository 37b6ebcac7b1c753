package layout

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type targetFile struct {
	Target targetConfig `toml:"target"`
}

type targetConfig struct {
	Name     string `toml:"name"`
	PtrSize  int    `toml:"ptr_size"`
	PtrAlign int    `toml:"ptr_align"`
}

// LoadTarget reads a target description from a TOML file. A missing
// ptr_align defaults to ptr_size.
func LoadTarget(path string) (Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Target{}, fmt.Errorf("read target file: %w", err)
	}
	var tf targetFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return Target{}, fmt.Errorf("parse target file %s: %w", path, err)
	}
	if tf.Target.PtrSize <= 0 {
		return Target{}, errors.New("target file: ptr_size must be positive")
	}
	t := Target{
		Name:     tf.Target.Name,
		PtrSize:  tf.Target.PtrSize,
		PtrAlign: tf.Target.PtrAlign,
	}
	if t.PtrAlign <= 0 {
		t.PtrAlign = t.PtrSize
	}
	return t, nil
}
