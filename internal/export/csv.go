package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/highwaynet/ucc-service/internal/model"
)

// Column maps one CSV header to a row-field extractor.
type Column struct {
	Title string
	Value func(row model.ContractRow) string
}

// ContractColumns is the fixed projection for contract-list downloads.
var ContractColumns = []Column{
	{Title: "UCC", Value: func(r model.ContractRow) string { return r.UCC }},
	{Title: "Contract Name", Value: func(r model.ContractRow) string { return r.ProjectName }},
	{Title: "PIU", Value: func(r model.ContractRow) string { return deref(r.PIU) }},
	{Title: "Type of Work", Value: func(r model.ContractRow) string { return deref(r.TypeOfWork) }},
	{Title: "Stretch", Value: func(r model.ContractRow) string { return r.StretchName }},
	{Title: "Length (Km)", Value: func(r model.ContractRow) string { return length(r) }},
	{Title: "Status", Value: func(r model.ContractRow) string { return r.ProjectStatus }},
}

// ContractsCSV renders the rows through the fixed column projection.
func ContractsCSV(rows []model.ContractRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(ContractColumns))
	for i, col := range ContractColumns {
		header[i] = col.Title
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	record := make([]string, len(ContractColumns))
	for _, row := range rows {
		for i, col := range ContractColumns {
			record[i] = col.Value(row)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func length(row model.ContractRow) string {
	if row.RevisedLength != nil {
		return fmt.Sprintf("%.2f", *row.RevisedLength)
	}
	if row.TotalLength != nil {
		return fmt.Sprintf("%.2f", *row.TotalLength)
	}
	return ""
}
