package config

import (
	"fmt"

	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/memory"
)

// A System is an image loaded into physical memory, with the registers
// pointing at the root table of the first space.
type System struct {
	Mode      mmu.Mode
	Storage   *memory.Storage
	Memory    *memory.WordView
	Tables    *vm.PageTableWriter
	Roots     map[string]uint32
	Registers *vm.Registers
}

// Build lays out the page tables of every space in a fresh memory.
func (img *Image) Build() (*System, error) {
	mode, err := img.TranslationMode()
	if err != nil {
		return nil, err
	}

	storage := memory.NewStorage(img.Memory.Capacity)
	view := memory.NewWordView(storage)

	s := &System{
		Mode:    mode,
		Storage: storage,
		Memory:  view,
		Tables: vm.NewPageTableWriter(view,
			img.Memory.TableBase, img.Memory.TableLimit),
		Roots: make(map[string]uint32, len(img.Spaces)),
	}

	for _, space := range img.Spaces {
		root, err := s.buildSpace(space)
		if err != nil {
			return nil, fmt.Errorf("space %s: %w", space.Name, err)
		}

		s.Roots[space.Name] = root
	}

	s.Registers = vm.NewRegisters(s.Roots[img.Spaces[0].Name], img.Privileged)

	return s, nil
}

func (s *System) buildSpace(space Space) (uint32, error) {
	root, err := s.Tables.AllocTable()
	if err != nil {
		return 0, err
	}

	for _, m := range space.Mappings {
		entry, err := m.LeafEntry()
		if err != nil {
			return 0, err
		}

		if s.Mode == mmu.ModeLegacy {
			err = s.Tables.MapLegacy(root, uint16(m.VA), entry)
		} else {
			err = s.Tables.MapProtected(root, m.VA, entry)
		}

		if err != nil {
			return 0, fmt.Errorf("map 0x%x: %w", m.VA, err)
		}
	}

	return root, nil
}

// Apply carries out a control request on the registers.
func (s *System) Apply(r Request) error {
	if r.Switch != "" {
		root, ok := s.Roots[r.Switch]
		if !ok {
			return fmt.Errorf("unknown space %q", r.Switch)
		}

		s.Registers.SwitchTask(root)
	}

	if r.Privileged != nil {
		s.Registers.SetPrivileged(*r.Privileged)
	}

	return nil
}
