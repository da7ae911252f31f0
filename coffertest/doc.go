/*
Package coffertest provides mocks and helpers for testing extensions.

Structures implemented here are mocks shared by tests of more than one
package. Keep helpers used by a single package local to that package.
*/
package coffertest
