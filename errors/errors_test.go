package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind    *Error
		err     error
		wantIs  bool
	}{
		"instance of the same root": {
			kind:   ErrDuplicate,
			err:    ErrDuplicate,
			wantIs: true,
		},
		"wrapped once": {
			kind:   ErrDuplicate,
			err:    Wrap(ErrDuplicate, "already there"),
			wantIs: true,
		},
		"wrapped multiple times": {
			kind:   ErrState,
			err:    Wrap(Wrap(Wrap(ErrState, "a"), "b"), "c"),
			wantIs: true,
		},
		"different root": {
			kind:   ErrDuplicate,
			err:    Wrap(ErrNotFound, "nope"),
			wantIs: false,
		},
		"stdlib error": {
			kind:   ErrDuplicate,
			err:    stderrors.New("stdlib"),
			wantIs: false,
		},
		"nil error": {
			kind:   ErrDuplicate,
			err:    nil,
			wantIs: false,
		},
		"nil kind matches nil error": {
			kind:   nil,
			err:    nil,
			wantIs: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantIs {
				t.Fatalf("want %v, got %v", tc.wantIs, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "whatever"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrappedErrorMessage(t *testing.T) {
	err := Wrap(ErrNotFound, "contract id 42")
	const want = "contract id 42: not found"
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRegisterDuplicateCodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	Register(2, "unauthorized clone")
}

func TestNewf(t *testing.T) {
	err := ErrInput.Newf("address: %X", []byte{0xbe, 0xef})
	if !ErrInput.Is(err) {
		t.Fatal("root lost")
	}
	want := fmt.Sprintf("address: BEEF: %s", ErrInput)
	if got := err.Error(); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestRecover(t *testing.T) {
	fail := func() (err error) {
		defer Recover(&err)
		panic("oops")
	}
	err := fail()
	if !ErrPanic.Is(err) {
		t.Fatalf("want a panic error, got %+v", err)
	}
}
