/*
Package errors implements custom error interfaces for coffer.

The idea is to reuse a small set of root errors, categorized by a unique
code, and wrap them with additional context. Testing against an error is
always done through the root, using the Is method, so that the amount of
context added along the way does not matter.

Custom roots may be declared by extensions through the Register function,
which guarantees code uniqueness.
*/
package errors
