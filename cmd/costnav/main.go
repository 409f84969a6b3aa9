// Command costnav answers natural-language questions about hospital costs
// and quality ratings.
package main

func main() {
	Execute()
}
