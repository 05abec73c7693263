package column

import "fmt"

// Block is a batch of equally long named columns.
type Block struct {
	Names   []string
	Columns []Column
}

// NewBlock validates that names and columns line up and share one length.
func NewBlock(names []string, cols []Column) (*Block, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("block has %d names for %d columns", len(names), len(cols))
	}
	for i := 1; i < len(cols); i++ {
		if cols[i].Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", names[i], cols[i].Len(), cols[0].Len())
		}
	}
	return &Block{Names: names, Columns: cols}, nil
}

// Rows returns the number of rows, 0 for a block without columns.
func (b *Block) Rows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// Column returns the column called name.
func (b *Block) Column(name string) (Column, bool) {
	for i, n := range b.Names {
		if n == name {
			return b.Columns[i], true
		}
	}
	return nil, false
}
