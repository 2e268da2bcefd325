package service

import (
	"errors"
	"testing"

	"roster/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorParse(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		form    StudentForm
		wantGPA *float64
		wantMsg string
	}{
		{"Minimal", StudentForm{Name: "A", Code: "X1"}, nil, ""},
		{"Trims fields", StudentForm{Name: "  A ", Code: " X1", Major: " CS ", GPA: " 3.5 "}, model.Float(3.5), ""},
		{"GPA zero", StudentForm{Name: "A", Code: "X1", GPA: "0"}, model.Float(0), ""},
		{"GPA zero point zero", StudentForm{Name: "A", Code: "X1", GPA: "0.0"}, model.Float(0), ""},
		{"GPA four", StudentForm{Name: "A", Code: "X1", GPA: "4.0"}, model.Float(4), ""},
		{"GPA below range", StudentForm{Name: "A", Code: "X1", GPA: "-0.01"}, nil, MsgInvalidGPA},
		{"GPA above range", StudentForm{Name: "A", Code: "X1", GPA: "4.01"}, nil, MsgInvalidGPA},
		{"GPA not a number", StudentForm{Name: "A", Code: "X1", GPA: "abc"}, nil, MsgInvalidGPA},
		{"GPA NaN", StudentForm{Name: "A", Code: "X1", GPA: "NaN"}, nil, MsgInvalidGPA},
		{"GPA Inf", StudentForm{Name: "A", Code: "X1", GPA: "Inf"}, nil, MsgInvalidGPA},
		{"GPA hex float", StudentForm{Name: "A", Code: "X1", GPA: "0x1p1"}, nil, MsgInvalidGPA},
		{"GPA upper hex", StudentForm{Name: "A", Code: "X1", GPA: "0X2"}, nil, MsgInvalidGPA},
		{"GPA signed hex", StudentForm{Name: "A", Code: "X1", GPA: "+0x1"}, nil, MsgInvalidGPA},
		{"GPA leading zero", StudentForm{Name: "A", Code: "X1", GPA: "03.5"}, model.Float(3.5), ""},
		{"Blank GPA is absent", StudentForm{Name: "A", Code: "X1", GPA: "   "}, nil, ""},
		{"Missing name", StudentForm{Code: "X1"}, nil, MsgRequired},
		{"Whitespace name", StudentForm{Name: "   ", Code: "X1"}, nil, MsgRequired},
		{"Missing code", StudentForm{Name: "A"}, nil, MsgRequired},
		{"Required wins over bad GPA", StudentForm{Name: "", Code: "X1", GPA: "abc"}, nil, MsgRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Parse(tt.form)
			if tt.wantMsg != "" {
				require.Error(t, err)
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantMsg, ve.Message)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Empty(t, got.ID)
			assert.Equal(t, tt.wantGPA, got.GPA)
		})
	}
}

func TestValidatorParseTrimsValues(t *testing.T) {
	got, err := NewValidator().Parse(StudentForm{Name: "  Ann ", Code: " S1 ", Major: " Math "})
	require.NoError(t, err)
	assert.Equal(t, model.Student{Name: "Ann", Code: "S1", Major: "Math"}, got)
}

func TestFormFromStudent(t *testing.T) {
	f := FormFromStudent(model.Student{ID: "1", Name: "A", Code: "X", GPA: model.Float(4)})
	assert.Equal(t, StudentForm{Name: "A", Code: "X", GPA: "4"}, f)

	f = FormFromStudent(model.Student{ID: "1", Name: "A", Code: "X", Major: "CS", GPA: model.Float(3.25)})
	assert.Equal(t, StudentForm{Name: "A", Code: "X", Major: "CS", GPA: "3.25"}, f)

	f = FormFromStudent(model.Student{ID: "1", Name: "A", Code: "X"})
	assert.Equal(t, "", f.GPA)
}
