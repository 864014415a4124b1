package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhasePack,
				Kind:     KindBufferSize,
				Path:     []string{"Hdr", "Payload"},
				TypeName: "CFE_HDR/CommandHeader",
				Detail:   "need 128 bits, have 64",
			},
			contains: []string{"[pack]", "buffer_size", "Hdr.Payload", "CFE_HDR/CommandHeader", "need 128 bits"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindInvalidID,
			},
			contains: []string{"[resolve]", "invalid_id"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "bad magic",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_data", "bad magic", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseUnpack,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseUnpack,
		Kind:  KindErrorControlMismatch,
		Path:  []string{"Crc"},
	}

	if !errors.Is(err, &Error{Phase: PhaseUnpack, Kind: KindErrorControlMismatch}) {
		t.Error("Is should match on phase and kind, ignoring path")
	}
	if errors.Is(err, &Error{Phase: PhasePack, Kind: KindErrorControlMismatch}) {
		t.Error("Is should not match a different phase")
	}
	if errors.Is(err, &Error{Phase: PhaseUnpack, Kind: KindFieldMismatch}) {
		t.Error("Is should not match a different kind")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("io failure")
	err := New(PhaseLoad, KindInvalidData).
		Path("types", "7").
		TypeName("Telemetry/SysLog").
		Value(7).
		Cause(cause).
		Detail("entry %d truncated", 7).
		Build()

	if err.Phase != PhaseLoad || err.Kind != KindInvalidData {
		t.Fatalf("builder lost phase/kind: %v %v", err.Phase, err.Kind)
	}
	if err.Detail != "entry 7 truncated" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if got := err.Path; len(got) != 2 || got[0] != "types" || got[1] != "7" {
		t.Errorf("Path = %v", got)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Is")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"InvalidID", InvalidID(PhaseResolve, "3:12"), PhaseResolve, KindInvalidID},
		{"IncompleteDB", IncompleteDB(PhaseWalk, nil, "2:0"), PhaseWalk, KindIncompleteDB},
		{"NoMatchingValue", NoMatchingValue("Cmd"), PhaseIdentify, KindNoMatchingValue},
		{"FieldMismatch", FieldMismatch([]string{"Len"}, 10, 12), PhaseVerify, KindFieldMismatch},
		{"ErrorControlMismatch", ErrorControlMismatch([]string{"Crc"}, 0x29B1, 0), PhaseVerify, KindErrorControlMismatch},
		{"BufferSize", BufferSize(PhasePack, nil, 128, 64), PhasePack, KindBufferSize},
		{"DepthExceeded", DepthExceeded(PhaseWalk, 32), PhaseWalk, KindDepthExceeded},
		{"Unsupported", Unsupported(PhasePack, "48-bit 1750A"), PhasePack, KindUnsupported},
		{"Registration", Registration("slot %d occupied", 3), PhaseBuild, KindRegistration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Phase != tt.phase {
				t.Errorf("phase = %v, want %v", tt.err.Phase, tt.phase)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
