// Package grading holds the arithmetic behind the grade calculator: predicting
// the exam score needed for a target grade, combining class standing and exam
// scores into a period grade, mapping a percentage onto an institutional grading
// scheme, and accumulating class standing from weighted categories.
//
// Everything here is a pure function of its inputs. Stateful flows such as the
// class standing wizard are modelled as values that are passed in and returned,
// so callers decide where that state lives.
package grading
