package config

import (
	"fmt"
	"os"
)

// WriteProfileTemplate writes an example run profile to path.
func WriteProfileTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("profile already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(ProfileTemplate), 0o600)
}

const ProfileTemplate = `# mview run profile
config = "frame.conf"
infile = ""
outfile = ""
pcap = false
chunksize = 0
byteoffset = 0
bitoffset = 0
rawhex = false
rawbin = false
rawascii = false
pause_ms = 0
little_endian = false
timestamp = false
head = 0
stats = false
bitpos = false
nojump = false
clear = false
filter_newlines = false
follow = false
poll_interval = "50ms"
status_addr = ""
cors_origins = ["http://localhost:3000"]
`
