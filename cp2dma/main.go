// Command cp2dma runs descriptor rings on a simulated DMA engine.
package main

import "github.com/sarchlab/cp2dma/cp2dma/cmd"

func main() {
	cmd.Execute()
}
