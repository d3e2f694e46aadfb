package banner

import (
	"fmt"
)

const banner = `
███████╗██╗  ██╗██╗███████╗████████╗██████╗ ██████╗
██╔════╝██║  ██║██║██╔════╝╚══██╔══╝██╔══██╗██╔══██╗
███████╗███████║██║█████╗     ██║   ██║  ██║██████╔╝
╚════██║██╔══██║██║██╔══╝     ██║   ██║  ██║██╔══██╗
███████║██║  ██║██║██║        ██║   ██████╔╝██████╔╝
╚══════╝╚═╝  ╚═╝╚═╝╚═╝        ╚═╝   ╚═════╝ ╚═════╝
`

// Print prints the startup banner with the effective runtime settings.
func Print(addr, phase, sourcePath, targetPath, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Phase:    %s\n", phase)
	if sourcePath != "" {
		fmt.Printf("Source:   %s\n", sourcePath)
	} else {
		fmt.Println("Source:   (detached)")
	}
	fmt.Printf("Target:   %s\n", targetPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /api/users               - Create a user (JSON: name, email)")
	fmt.Println("GET  /api/posts?sort=<order>  - List posts (latest|oldest|author|content)")
	fmt.Println("POST /admin/backfill          - Copy source data into target views")
	fmt.Println("POST /admin/verify            - Compare source and target counts")
	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/api/users' -d '{\"name\":\"ada\",\"email\":\"ada@example.com\"}'\n", addr)
	fmt.Printf("curl 'http://localhost%s/api/posts?sort=latest'\n", addr)
}
