package dataset

import (
	"bufio"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/pickserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// tomlFile is the on-disk layout of a TOML data set.
type tomlFile struct {
	People []*suggest.Candidate `toml:"people"`
}

// Load reads the data set at path, dispatching on its extension.
func Load(path string) ([]*suggest.Candidate, error) {
	format, err := ValidateFile(path)
	if err != nil {
		return nil, err
	}

	var people []*suggest.Candidate
	switch format {
	case FormatTOML:
		people, err = LoadTOML(path)
	case FormatMsgpack:
		people, err = LoadMsgpack(path)
	}
	if err != nil {
		return nil, err
	}

	log.Debugf("Loaded %d people from %s (%s)", len(people), path, format)
	return people, nil
}

// LoadTOML reads a file of [[people]] tables.
func LoadTOML(path string) ([]*suggest.Candidate, error) {
	var data tomlFile
	meta, err := toml.DecodeFile(path, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnf("Ignoring unknown keys in %s: %v", path, undecoded)
	}
	return data.People, nil
}

// LoadMsgpack reads a msgpack-encoded array of people.
func LoadMsgpack(path string) ([]*suggest.Candidate, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var people []*suggest.Candidate
	if err := msgpack.NewDecoder(bufio.NewReader(file)).Decode(&people); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return people, nil
}

// SaveMsgpack writes people as a msgpack array.
func SaveMsgpack(people []*suggest.Candidate, path string) error {
	file, err := os.Create(path)
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := msgpack.NewEncoder(w).Encode(people); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return w.Flush()
}

// SaveTOML writes people as [[people]] tables.
func SaveTOML(people []*suggest.Candidate, path string) error {
	file, err := os.Create(path)
	if err != nil {
		log.Errorf("Failed to create file: %v", err)
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(tomlFile{People: people})
}

// LoadOrBuiltin loads path, or returns the built-in people when path is
// empty.
func LoadOrBuiltin(path string) ([]*suggest.Candidate, error) {
	if path == "" {
		log.Debug("No data set configured, using built-in people")
		return Builtin(), nil
	}
	return Load(path)
}
