package datasheet

import (
	"bytes"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"

	"github.com/wippyai/eds-runtime/errors"
)

// Datasheet files are the compiled schema artifact exchanged between the
// schema toolchain and this runtime: a 4-byte magic, then one CBOR document.
// The packed-identical flags are host-dependent and therefore recomputed on
// load rather than trusted from the file.

var fileMagic = [4]byte{'E', 'D', 'S', 'B'}

// FileVersion is the current datasheet file format version.
const FileVersion uint32 = 1

type fileDoc struct {
	Version    uint32       `cbor:"1,keyasint"`
	Components []*Component `cbor:"2,keyasint"`
}

var (
	fileEncMode, _ = cbor.CanonicalEncOptions().EncMode()
	fileDecMode, _ = cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxNestedLevels:  64,
	}.DecMode()
)

// Write serializes the given component tables to w.
func Write(w io.Writer, components ...*Component) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "write datasheet magic")
	}
	data, err := fileEncMode.Marshal(fileDoc{Version: FileVersion, Components: components})
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "encode datasheet")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "write datasheet body")
	}
	return nil
}

// Read parses component tables from r. Packed-identical flags are recomputed
// for the running host.
func Read(r io.Reader) ([]*Component, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read datasheet magic")
	}
	if !bytes.Equal(magic[:], fileMagic[:]) {
		return nil, errors.InvalidData(errors.PhaseLoad, nil, "not a datasheet file (bad magic)")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "read datasheet body")
	}
	var doc fileDoc
	if err := fileDecMode.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "decode datasheet")
	}
	if doc.Version != FileVersion {
		return nil, errors.InvalidData(errors.PhaseLoad, nil, "unsupported datasheet version")
	}
	for _, c := range doc.Components {
		computePackedFlags(c)
	}
	return doc.Components, nil
}

// WriteFile writes component tables to a datasheet file.
func WriteFile(path string, components ...*Component) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "create datasheet file")
	}
	defer f.Close()
	if err := Write(f, components...); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile reads component tables from a datasheet file.
func ReadFile(path string) ([]*Component, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindNotFound, err, "open datasheet file")
	}
	defer f.Close()
	comps, err := Read(f)
	if err != nil {
		return nil, err
	}
	Logger().Info("datasheet loaded",
		zap.String("path", path),
		zap.Int("components", len(comps)))
	return comps, nil
}
