/*
Package utils contains generic decorators that are useful in the stack of
almost any application. They handle the cross cutting concerns of an
operation: transactional isolation, panic recovery and logging.
*/
package utils
