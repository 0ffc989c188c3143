// Package mounts discovers local, non-virtual filesystem mount points from
// the running process's mount table.
package mounts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const mountInfoPath = "/proc/self/mountinfo"

// InvalidLineError reports a mount-table line that does not match the
// expected mountinfo format. This is fatal: it means the input format
// itself is broken, not that the environment is transiently unhealthy.
type InvalidLineError struct {
	Line string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("invalid mountinfo line: %q", e.Line)
}

// Filesystem types that never hold user data: pseudo, network, and cluster
// filesystems. Anything here is dropped from discovery, as is any type
// starting with "fuse." or "nfs".
var excludedFSTypes = map[string]struct{}{
	"proc":        {},
	"procfs":      {},
	"sysfs":       {},
	"devtmpfs":    {},
	"devpts":      {},
	"tmpfs":       {},
	"ramfs":       {},
	"hugetlbfs":   {},
	"mqueue":      {},
	"cgroup":      {},
	"cgroup2":     {},
	"pstore":      {},
	"bpf":         {},
	"securityfs":  {},
	"debugfs":     {},
	"tracefs":     {},
	"configfs":    {},
	"fusectl":     {},
	"binfmt_misc": {},
	"autofs":      {},
	"rpc_pipefs":  {},
	"nsfs":        {},
	"overlay":     {},
	"squashfs":    {},
	"nfs":         {},
	"nfs4":        {},
	"cifs":        {},
	"smb3":        {},
	"smbfs":       {},
	"ceph":        {},
	"glusterfs":   {},
	"ocfs2":       {},
	"gfs2":        {},
	"afs":         {},
	"9p":          {},
}

func excluded(fstype string) bool {
	if _, ok := excludedFSTypes[fstype]; ok {
		return true
	}
	return strings.HasPrefix(fstype, "fuse.") || strings.HasPrefix(fstype, "nfs")
}

// ParseLocalMounts reads a mountinfo-formatted table and returns the sorted,
// deduplicated mount points of local, non-virtual filesystems.
//
// Each line has two sections separated by " - ": the left section's fifth
// whitespace-delimited field is the mount point, the right section's first
// field is the filesystem type.
func ParseLocalMounts(r io.Reader) ([]string, error) {
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		left, right, ok := strings.Cut(line, " - ")
		if !ok {
			return nil, &InvalidLineError{Line: line}
		}
		leftFields := strings.Fields(left)
		rightFields := strings.Fields(right)
		if len(leftFields) < 5 || len(rightFields) < 1 {
			return nil, &InvalidLineError{Line: line}
		}

		if excluded(rightFields[0]) {
			continue
		}
		seen[unescapeOctal(leftFields[4])] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mount table: %w", err)
	}

	out := make([]string, 0, len(seen))
	for mp := range seen {
		out = append(out, mp)
	}
	sort.Strings(out)
	return out, nil
}

// DiscoverLocalMountsUnder returns the local mount points within root, read
// from /proc/self/mountinfo. For root "/" all local mounts are returned.
// For a subtree with no mounts inside it, [root] itself is returned so the
// caller always has at least one scan root.
func DiscoverLocalMountsUnder(root string) ([]string, error) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return nil, fmt.Errorf("opening mount table: %w", err)
	}
	defer f.Close()

	all, err := ParseLocalMounts(f)
	if err != nil {
		return nil, err
	}
	return FilterUnder(root, all), nil
}

// FilterUnder restricts mount points to those within root, falling back to
// [root] when none match.
func FilterUnder(root string, mountPoints []string) []string {
	if root == "/" {
		return mountPoints
	}
	root = strings.TrimRight(root, "/")
	var within []string
	for _, mp := range mountPoints {
		if mp == root || strings.HasPrefix(mp, root+"/") {
			within = append(within, mp)
		}
	}
	if len(within) == 0 {
		return []string{root}
	}
	return within
}

// unescapeOctal decodes \NNN three-digit octal escapes, which the kernel
// uses for spaces and special characters in mount-point fields.
func unescapeOctal(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
