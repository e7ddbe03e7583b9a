// Package config reads memory images: page-table layouts and the requests to
// replay against them.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields an image leaves out.
const (
	DefaultCapacity  = 1 << 20
	DefaultTableBase = 0x1000
	DefaultSpace     = "main"
)

// Image describes the physical memory the translators walk and the requests
// that are issued against it.
type Image struct {
	Mode       string       `yaml:"mode"`
	Privileged bool         `yaml:"privileged,omitempty"`
	Memory     MemoryConfig `yaml:"memory"`
	Spaces     []Space      `yaml:"spaces"`
	Requests   []Request    `yaml:"requests,omitempty"`
}

// MemoryConfig sizes physical memory and the region page tables are
// allocated from. TableLimit defaults to Capacity.
type MemoryConfig struct {
	Capacity   uint64 `yaml:"capacity,omitempty"`
	TableBase  uint32 `yaml:"table_base,omitempty"`
	TableLimit uint32 `yaml:"table_limit,omitempty"`
}

// A Space is one address space, backed by its own root table. The first
// space is active when replay starts.
type Space struct {
	Name     string    `yaml:"name"`
	Mappings []Mapping `yaml:"mappings"`
}

// A Mapping places one leaf entry in the tables of a space. Either PPN and
// Perm describe a valid entry, or Entry gives the raw 32-bit word.
type Mapping struct {
	VA    uint32  `yaml:"va"`
	PPN   uint32  `yaml:"ppn,omitempty"`
	Perm  string  `yaml:"perm,omitempty"`
	Entry *uint32 `yaml:"entry,omitempty"`
}

// A Request is one replay step. It either translates VA or changes the
// registers by switching to another space or privilege level.
type Request struct {
	VA         *uint32 `yaml:"va,omitempty"`
	Access     string  `yaml:"access,omitempty"`
	Switch     string  `yaml:"switch,omitempty"`
	Privileged *bool   `yaml:"privileged,omitempty"`
}

// Address returns the virtual address to translate. A request without an
// address translates address 0.
func (r Request) Address() uint32 {
	if r.VA == nil {
		return 0
	}

	return *r.VA
}

// IsControl reports whether the request changes registers instead of
// translating.
func (r Request) IsControl() bool {
	return r.Switch != "" || r.Privileged != nil
}

// Load reads and validates the image at path.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	img, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return img, nil
}

// Parse decodes and validates a YAML image.
func Parse(data []byte) (*Image, error) {
	var img Image
	if err := yaml.Unmarshal(data, &img); err != nil {
		return nil, err
	}

	img.normalize()

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return &img, nil
}

func (img *Image) normalize() {
	if img.Mode == "" {
		img.Mode = mmu.ModeProtected.String()
	}

	if img.Memory.Capacity == 0 {
		img.Memory.Capacity = DefaultCapacity
	}

	if img.Memory.TableBase == 0 {
		img.Memory.TableBase = DefaultTableBase
	}

	if img.Memory.TableLimit == 0 {
		img.Memory.TableLimit = uint32(min(img.Memory.Capacity, 1<<32-1))
	}

	if len(img.Spaces) == 0 {
		img.Spaces = []Space{{Name: DefaultSpace}}
	}

	for i := range img.Spaces {
		if img.Spaces[i].Name == "" && i == 0 {
			img.Spaces[i].Name = DefaultSpace
		}
	}
}

// TranslationMode returns the addressing mode the image is laid out for.
func (img *Image) TranslationMode() (mmu.Mode, error) {
	switch strings.ToLower(img.Mode) {
	case "legacy":
		return mmu.ModeLegacy, nil
	case "protected":
		return mmu.ModeProtected, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", img.Mode)
	}
}

// Validate checks that the image can be loaded and replayed.
func (img *Image) Validate() error {
	mode, err := img.TranslationMode()
	if err != nil {
		return err
	}

	if uint64(img.Memory.TableLimit) > img.Memory.Capacity {
		return fmt.Errorf("table limit 0x%x beyond capacity 0x%x",
			img.Memory.TableLimit, img.Memory.Capacity)
	}

	if img.Memory.TableBase >= img.Memory.TableLimit {
		return fmt.Errorf("empty table region [0x%x, 0x%x)",
			img.Memory.TableBase, img.Memory.TableLimit)
	}

	spaces := make(map[string]bool)
	for _, s := range img.Spaces {
		if s.Name == "" {
			return fmt.Errorf("space without a name")
		}

		if spaces[s.Name] {
			return fmt.Errorf("duplicate space %q", s.Name)
		}
		spaces[s.Name] = true

		for _, m := range s.Mappings {
			if err := m.validate(mode); err != nil {
				return fmt.Errorf("space %s: %w", s.Name, err)
			}
		}
	}

	for i, r := range img.Requests {
		if err := r.validate(mode, spaces); err != nil {
			return fmt.Errorf("request %d: %w", i, err)
		}
	}

	return nil
}

func (m Mapping) validate(mode mmu.Mode) error {
	if mode == mmu.ModeLegacy && m.VA > 0xFFFF {
		return fmt.Errorf("legacy address 0x%x wider than 16 bits", m.VA)
	}

	if m.Entry != nil && (m.PPN != 0 || m.Perm != "") {
		return fmt.Errorf("mapping 0x%x sets both entry and ppn/perm", m.VA)
	}

	if m.PPN > 0xFFFFFF {
		return fmt.Errorf("mapping 0x%x: ppn 0x%x wider than 24 bits", m.VA, m.PPN)
	}

	_, err := ParsePerm(m.Perm)

	return err
}

// LeafEntry returns the entry the mapping writes into the page table.
func (m Mapping) LeafEntry() (vm.LeafEntry, error) {
	if m.Entry != nil {
		return vm.LeafEntry(*m.Entry), nil
	}

	perm, err := ParsePerm(m.Perm)
	if err != nil {
		return 0, err
	}

	return vm.NewLeafEntry(m.PPN, perm), nil
}

func (r Request) validate(mode mmu.Mode, spaces map[string]bool) error {
	if r.IsControl() {
		if r.Access != "" || r.VA != nil {
			return fmt.Errorf("control request also translates")
		}

		if r.Switch != "" && !spaces[r.Switch] {
			return fmt.Errorf("unknown space %q", r.Switch)
		}

		return nil
	}

	if mode == mmu.ModeLegacy {
		if r.Address() > 0xFFFF {
			return fmt.Errorf("legacy address 0x%x wider than 16 bits", r.Address())
		}

		return nil
	}

	_, err := r.AccessIntent()

	return err
}

// AccessIntent parses the access of a translation request. An empty access
// is a read.
func (r Request) AccessIntent() (vm.AccessIntent, error) {
	if r.Access == "" {
		return vm.AccessRead, nil
	}

	return vm.ParseAccessIntent(r.Access)
}

// ParsePerm converts a set of the letters p, r, w and x into leaf entry
// permission flags. "-" is ignored so "pr-x" style strings work.
func ParsePerm(s string) (vm.LeafEntry, error) {
	var perm vm.LeafEntry

	for _, c := range strings.ToLower(s) {
		switch c {
		case 'p':
			perm |= vm.LeafPrivileged
		case 'r':
			perm |= vm.LeafRead
		case 'w':
			perm |= vm.LeafWrite
		case 'x':
			perm |= vm.LeafExecute
		case '-':
		default:
			return 0, fmt.Errorf("unknown permission %q in %q", c, s)
		}
	}

	return perm, nil
}
