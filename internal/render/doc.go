// Package render owns terminal output around decoded windows: the raw and
// statistics blocks printed above the fields, the line accounting that lets a
// window be redrawn in place, and the cursor control used to do it.
package render
