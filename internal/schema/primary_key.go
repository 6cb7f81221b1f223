package schema

// PartitionKeyColumns returns the partition-key segments in declaration order.
func (t *Table) PartitionKeyColumns() []Column {
	var cols []Column
	for _, col := range t.Columns {
		if col.IsPartitionKey {
			cols = append(cols, col)
		}
	}
	return cols
}

// ClusteringKeyColumns returns the clustering-key segments in declaration order.
func (t *Table) ClusteringKeyColumns() []Column {
	var cols []Column
	for _, col := range t.Columns {
		if col.IsClusteringKey {
			cols = append(cols, col)
		}
	}
	return cols
}

// PrimaryKeyColumns returns all primary-key segments: partition segments
// followed by clustering segments.
func (t *Table) PrimaryKeyColumns() []Column {
	return append(t.PartitionKeyColumns(), t.ClusteringKeyColumns()...)
}

// ValueColumns returns the non-key columns in declaration order.
func (t *Table) ValueColumns() []Column {
	var cols []Column
	for _, col := range t.Columns {
		if !col.IsPartitionKey && !col.IsClusteringKey {
			cols = append(cols, col)
		}
	}
	return cols
}
