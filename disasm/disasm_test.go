package disasm_test

import (
	"math"
	"strings"
	"testing"

	"github.com/wasmtools/wevent/disasm"
	"github.com/wasmtools/wevent/event"
	"github.com/wasmtools/wevent/event/eventtest"
)

func u32(v uint32) *uint32 { return &v }
func i32(v int32) *int32   { return &v }

func run(t *testing.T, events []event.Event) *disasm.Disassembler {
	t.Helper()
	d := disasm.New()
	r := eventtest.NewFake(events)
	if err := d.Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return d
}

func TestEmptyModule(t *testing.T) {
	d := run(t, []event.Event{
		{Kind: event.BeginWasm},
		{Kind: event.EndWasm},
	})
	if d.String() != "(module\n)\n" {
		t.Errorf("got %q", d.String())
	}
}

func TestIdentityFunction(t *testing.T) {
	events := []event.Event{
		{Kind: event.BeginWasm},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionType}},
		{Kind: event.TypeSectionEntry, Payload: event.FunctionType{
			Form:    event.ValueFunc,
			Params:  []event.ValueType{event.ValueI32},
			Returns: []event.ValueType{event.ValueI32},
		}},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionFunction}},
		{Kind: event.FunctionSectionEntry, Payload: event.FunctionEntry{TypeIndex: 0}},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionExport}},
		{Kind: event.ExportSectionEntry, Payload: event.ExportEntry{Field: []byte("id"), Kind: event.KindFunction, Index: 0}},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionCode}},
		{Kind: event.BeginFunctionBody, Payload: event.FunctionInformation{}},
		{Kind: event.CodeOperator, Payload: event.OperatorInformation{Code: 0x20, LocalIndex: u32(0)}},
		{Kind: event.CodeOperator, Payload: event.OperatorInformation{Code: 0x0B}},
		{Kind: event.EndFunctionBody},
		{Kind: event.EndSection},
		{Kind: event.EndWasm},
	}
	d := run(t, events)
	out := d.String()
	if !strings.Contains(out, "(func $func0 (param $var0 i32) (result i32)\n    get_local $var0\n  )\n") {
		t.Errorf("missing function body in output:\n%s", out)
	}
	if !strings.Contains(out, `(export "id" $func0)`) {
		t.Errorf("missing export in output:\n%s", out)
	}
}

func TestMemoryLoadAlignment(t *testing.T) {
	tests := []struct {
		flags, offset uint32
		want          string
	}{
		{2, 16, "i32.load offset=16"},
		{1, 16, "i32.load offset=16 align=2"},
		{2, 0, "i32.load offset=0"},
	}
	for _, tt := range tests {
		events := []event.Event{
			{Kind: event.BeginWasm},
			{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionCode}},
			{Kind: event.BeginFunctionBody, Payload: event.FunctionInformation{}},
			{Kind: event.CodeOperator, Payload: event.OperatorInformation{
				Code:   0x28,
				Memory: &event.MemoryImmediate{Flags: tt.flags, Offset: tt.offset},
			}},
			{Kind: event.CodeOperator, Payload: event.OperatorInformation{Code: 0x0B}},
			{Kind: event.EndFunctionBody},
			{Kind: event.EndSection},
			{Kind: event.EndWasm},
		}
		d := run(t, events)
		if !strings.Contains(d.String(), tt.want) {
			t.Errorf("flags=%d offset=%d: output %q does not contain %q", tt.flags, tt.offset, d.String(), tt.want)
		}
	}
}

func TestDataSegmentWithInitExpression(t *testing.T) {
	events := []event.Event{
		{Kind: event.BeginWasm},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionData}},
		{Kind: event.BeginDataSectionEntry, Payload: event.DataSegment{Index: 0}},
		{Kind: event.BeginInitExpressionBody},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x41, I32: i32(1024)}},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x0B}},
		{Kind: event.EndInitExpressionBody},
		{Kind: event.DataSectionEntryBody, Payload: event.DataSegmentBody{Data: []byte("hi")}},
		{Kind: event.EndDataSectionEntry},
		{Kind: event.EndSection},
		{Kind: event.EndWasm},
	}
	d := run(t, events)
	want := "  (data\n    (\n      i32.const 1024\n      end\n    )\n    \"hi\"\n  )\n"
	if !strings.Contains(d.String(), want) {
		t.Errorf("output:\n%s\nwant substring:\n%s", d.String(), want)
	}
}

func TestCanonicalNaN(t *testing.T) {
	events := []event.Event{
		{Kind: event.BeginWasm},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionCode}},
		{Kind: event.BeginFunctionBody, Payload: event.FunctionInformation{}},
		{Kind: event.CodeOperator, Payload: event.OperatorInformation{Code: 0x43, F32: f32nan()}},
		{Kind: event.CodeOperator, Payload: event.OperatorInformation{Code: 0x0B}},
		{Kind: event.EndFunctionBody},
		{Kind: event.EndSection},
		{Kind: event.EndWasm},
	}
	d := run(t, events)
	if !strings.Contains(d.String(), "f32.const nan\n") {
		t.Errorf("output:\n%s\nwant f32.const nan", d.String())
	}
}

func f32nan() *float32 {
	v := math.Float32frombits(0x7fc00000)
	return &v
}

func TestTableGlobalStartElement(t *testing.T) {
	events := []event.Event{
		{Kind: event.BeginWasm},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionTable}},
		{Kind: event.TableSectionEntry, Payload: event.TableType{
			ElementType: event.ValueAnyFunc,
			Limits:      event.ResizableLimits{Initial: 1},
		}},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionGlobal}},
		{Kind: event.BeginGlobalSectionEntry, Payload: event.GlobalEntry{
			Type: event.GlobalType{ContentType: event.ValueI32, Mutable: false},
		}},
		{Kind: event.BeginInitExpressionBody},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x41, I32: i32(7)}},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x0B}},
		{Kind: event.EndInitExpressionBody},
		{Kind: event.EndGlobalSectionEntry},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionStart}},
		{Kind: event.StartSectionEntry, Payload: event.FunctionEntry{TypeIndex: 0}},
		{Kind: event.EndSection},
		{Kind: event.BeginSection, Payload: event.SectionInfo{ID: event.SectionElement}},
		{Kind: event.BeginElementSectionEntry, Payload: event.ElementSegment{Index: 0}},
		{Kind: event.BeginInitExpressionBody},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x41, I32: i32(0)}},
		{Kind: event.InitExpressionOperator, Payload: event.OperatorInformation{Code: 0x0B}},
		{Kind: event.EndInitExpressionBody},
		{Kind: event.ElementSectionEntryBody, Payload: event.ElementSegmentBody{Functions: []uint32{0}}},
		{Kind: event.EndElementSectionEntry},
		{Kind: event.EndSection},
		{Kind: event.EndWasm},
	}
	d := run(t, events)
	out := d.String()
	if !strings.Contains(out, "(table $table0 1 anyfunc)") {
		t.Errorf("missing table in output:\n%s", out)
	}
	if !strings.Contains(out, "(global $global0 i32\n    (\n      i32.const 7\n      end\n    )\n  )\n") {
		t.Errorf("missing global in output:\n%s", out)
	}
	if !strings.Contains(out, "(start $func0)") {
		t.Errorf("missing start in output:\n%s", out)
	}
	if !strings.Contains(out, "  (elem\n    (\n      i32.const 0\n      end\n    )\n   $func0\n  )\n") {
		t.Errorf("missing element section in output:\n%s", out)
	}
}
