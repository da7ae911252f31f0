/*
Package gconf provides a toolset for managing an extension configuration.

Each package can declare its own configuration singleton. The configuration
is loaded from the genesis during initialization and can be read by any
handler during runtime.
*/
package gconf
