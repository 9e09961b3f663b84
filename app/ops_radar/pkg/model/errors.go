package model

import "errors"

var (
	// ErrInvalidParameter 参数非法，例如负的天数
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrEmptyInput 对空表求均值或比率
	ErrEmptyInput = errors.New("empty input")
	// ErrDivisionByZero 比较基数为零
	ErrDivisionByZero = errors.New("division by zero")
)
