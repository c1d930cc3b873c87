// sheetguard — classification and policy decisions for spreadsheet
// content before it leaves for external AI or cloud processing.
package main

import "github.com/nvoronin/sheetguard/internal/cli"

func main() {
	cli.Execute()
}
