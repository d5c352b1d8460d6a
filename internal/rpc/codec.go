package rpc

import (
	"fmt"
	"time"

	"github.com/msto63/robolang/pkg/lang"
	"github.com/msto63/robolang/pkg/lang/diag"
	"google.golang.org/protobuf/types/known/structpb"
)

// Response is the decoded form of a Validate reply
type Response struct {
	OK         bool
	Functions  []string
	Tokens     int
	Elapsed    time.Duration
	Diagnostic *diag.Diagnostic
}

// EncodeResult converts a validation result into the wire struct
func EncodeResult(r lang.Result) (*structpb.Struct, error) {
	out := map[string]interface{}{
		"ok":         r.OK(),
		"tokens":     len(r.Tokens),
		"elapsed_us": r.Elapsed.Microseconds(),
	}

	if r.OK() {
		names := make([]interface{}, 0, len(r.File.Functions))
		for _, fn := range r.File.Functions {
			names = append(names, fn.Name)
		}
		out["functions"] = names
	} else {
		d := r.Diagnostic
		out["diagnostic"] = map[string]interface{}{
			"code":     d.Code.String(),
			"message":  d.Message,
			"severity": int(d.Severity),
			"expected": d.Expected,
			"range": map[string]interface{}{
				"start": encodePosition(d.Range.Start),
				"end":   encodePosition(d.Range.End),
			},
		}
	}

	return structpb.NewStruct(out)
}

func encodePosition(p diag.Position) map[string]interface{} {
	return map[string]interface{}{"line": p.Line, "character": p.Character}
}

// DecodeResponse converts the wire struct back into a Response
func DecodeResponse(s *structpb.Struct) (*Response, error) {
	fields := s.GetFields()
	okValue, present := fields["ok"]
	if !present {
		return nil, fmt.Errorf("response has no ok field")
	}

	resp := &Response{
		OK:      okValue.GetBoolValue(),
		Tokens:  int(fields["tokens"].GetNumberValue()),
		Elapsed: time.Duration(fields["elapsed_us"].GetNumberValue()) * time.Microsecond,
	}

	for _, v := range fields["functions"].GetListValue().GetValues() {
		resp.Functions = append(resp.Functions, v.GetStringValue())
	}

	if resp.OK {
		return resp, nil
	}

	d := fields["diagnostic"].GetStructValue()
	if d == nil {
		return nil, fmt.Errorf("rejected response has no diagnostic")
	}
	df := d.GetFields()
	rf := df["range"].GetStructValue().GetFields()

	resp.Diagnostic = &diag.Diagnostic{
		Code:     diag.Code(df["code"].GetStringValue()),
		Message:  df["message"].GetStringValue(),
		Severity: diag.Severity(int(df["severity"].GetNumberValue())),
		Expected: df["expected"].GetStringValue(),
		Range: diag.Range{
			Start: decodePosition(rf["start"].GetStructValue()),
			End:   decodePosition(rf["end"].GetStructValue()),
		},
	}
	return resp, nil
}

func decodePosition(s *structpb.Struct) diag.Position {
	f := s.GetFields()
	return diag.Position{
		Line:      int(f["line"].GetNumberValue()),
		Character: int(f["character"].GetNumberValue()),
	}
}
