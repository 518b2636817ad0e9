package window

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-tilewm/internal/geom"
)

// Handle is a generation checked reference into a Registry. The zero Handle
// never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) Uint64() uint64 {
	return uint64(h.gen)<<32 | uint64(h.index)
}

// String formats the handle the way it appears in events and the API.
func (h Handle) String() string {
	return fmt.Sprintf("%x", h.Uint64())
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return Handle{}, fmt.Errorf("invalid window handle %q: %w", s, err)
	}
	return Handle{index: uint32(v), gen: uint32(v >> 32)}, nil
}

// Attributes is what the registry knows about a window. It carries no layout
// data.
type Attributes struct {
	Handle    Handle   `json:"handle"`
	Workspace int      `json:"workspace"`
	Mapped    bool     `json:"mapped"`
	Visible   bool     `json:"visible"`
	Box       geom.Box `json:"box"`
	Class     string   `json:"class"`
	Title     string   `json:"title"`
}

// Spec describes a window to create.
type Spec struct {
	Workspace int
	Box       geom.Box
	Class     string
	Title     string
}
