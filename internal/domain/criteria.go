package domain

import "fmt"

// Operator is a comparison applied between a user stat and a badge operand.
type Operator int

const (
	OpGT Operator = iota
	OpGE
	OpLT
	OpLE
	OpEQ
	OpNE
	OpContains
)

var operatorSymbols = map[Operator]string{
	OpGT:       ">",
	OpGE:       ">=",
	OpLT:       "<",
	OpLE:       "<=",
	OpEQ:       "==",
	OpNE:       "!=",
	OpContains: "contains",
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// ParseOperator maps the textual form (">=", "contains", ...) to an Operator.
func ParseOperator(s string) (Operator, error) {
	for op, sym := range operatorSymbols {
		if sym == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

type Comparison struct {
	Op      Operator
	Operand any
}

func GT(v any) Comparison       { return Comparison{Op: OpGT, Operand: v} }
func GE(v any) Comparison       { return Comparison{Op: OpGE, Operand: v} }
func LT(v any) Comparison       { return Comparison{Op: OpLT, Operand: v} }
func LE(v any) Comparison       { return Comparison{Op: OpLE, Operand: v} }
func EQ(v any) Comparison       { return Comparison{Op: OpEQ, Operand: v} }
func NE(v any) Comparison       { return Comparison{Op: OpNE, Operand: v} }
func Contains(v any) Comparison { return Comparison{Op: OpContains, Operand: v} }

type CriterionKind int

const (
	// CriterionScalar requires the stat to equal Value exactly.
	CriterionScalar CriterionKind = iota
	// CriterionComparison requires every entry of Comparisons to hold.
	CriterionComparison
)

// Criterion is one requirement on a single stat key.
type Criterion struct {
	Key         string
	Kind        CriterionKind
	Value       any
	Comparisons []Comparison
}

func Scalar(key string, v any) Criterion {
	return Criterion{Key: key, Kind: CriterionScalar, Value: v}
}

func Compare(key string, cmps ...Comparison) Criterion {
	return Criterion{Key: key, Kind: CriterionComparison, Comparisons: cmps}
}

// Criteria are ANDed together.
type Criteria []Criterion
