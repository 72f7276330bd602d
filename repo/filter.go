package repo

import (
	"fmt"

	"aif/pkg/goutil"
)

type LogicalOp string

const (
	LogicalOpAnd LogicalOp = "AND"
	LogicalOpOr  LogicalOp = "OR"
)

type Op string

const (
	OpEq        Op = "="
	OpNotEq     Op = "!="
	OpGt        Op = ">"
	OpGte       Op = ">="
	OpLt        Op = "<"
	OpLte       Op = "<="
	OpLike      Op = "LIKE"
	OpIn        Op = "IN"
	OpIsNull    Op = "IS NULL"
	OpIsNotNull Op = "IS NOT NULL"
)

type Condition struct {
	Field         string
	Op            Op
	Value         interface{}
	NextLogicalOp LogicalOp
}

type Pagination struct {
	Page    *uint32
	Limit   *uint32
	HasNext *bool
	Total   *int64
}

func (p *Pagination) GetPage() uint32 {
	if p != nil && p.Page != nil {
		return *p.Page
	}
	return 0
}

func (p *Pagination) GetLimit() uint32 {
	if p != nil && p.Limit != nil {
		return *p.Limit
	}
	return 0
}

type Filter struct {
	Conditions []*Condition
	Pagination *Pagination
}

func ToSqlWithArgs(f *Filter) (sql string, args []interface{}) {
	if f == nil {
		return
	}

	for i, condition := range f.Conditions {
		if condition.Op == OpIsNull || condition.Op == OpIsNotNull {
			sql += fmt.Sprintf("%s %s", condition.Field, condition.Op)
		} else {
			if goutil.IsNil(condition.Value) {
				continue
			}

			switch condition.Op {
			case OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte, OpLike:
				sql += fmt.Sprintf("%s %s ?", condition.Field, condition.Op)
				args = append(args, condition.Value)
			case OpIn:
				sql += fmt.Sprintf("%s IN ?", condition.Field)
				args = append(args, condition.Value)
			}
		}

		if len(f.Conditions) > 1 && i != len(f.Conditions)-1 {
			op := condition.NextLogicalOp
			if op == "" {
				op = LogicalOpAnd
			}
			sql += fmt.Sprintf(" %s ", op)
		}
	}

	return
}
