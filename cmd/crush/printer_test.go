package main

import (
	"testing"

	"crush/internal/lang"
)

func TestPrintTableHandlesNilAndEmptySchema(t *testing.T) {
	printTable(nil)
	printTable(&lang.Table{})
}

func TestPrintTableRendersRows(t *testing.T) {
	tbl := &lang.Table{
		Schema: lang.Schema{{Name: "name"}, {Name: "size"}},
		Rows: []lang.Row{
			{lang.Text("a.txt"), lang.IntegerFromInt64(12)},
			{lang.Text("longer-name.txt"), lang.IntegerFromInt64(4096)},
		},
	}
	printTable(tbl)
}
