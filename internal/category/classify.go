package category

import (
	"path/filepath"
	"strings"
)

// Path-prefix rules win over everything else. Comparison is done on the
// lowercased path and is component-aware: "/usr" matches "/usr/bin/x" but
// not "/usrfoo".
var packagePrefixes = []string{
	"/var/lib/dpkg",
	"/var/cache/apt",
	"/var/lib/rpm",
	"/var/cache/dnf",
	"/var/cache/yum",
	"/var/lib/pacman",
	"/var/cache/pacman",
	"/var/lib/flatpak",
	"/var/lib/snapd",
}

var systemPrefixes = []string{
	"/usr",
	"/lib",
	"/lib64",
	"/bin",
	"/sbin",
	"/etc",
	"/boot",
	"/opt",
}

// Installer/package archive suffixes, checked before the extension table so
// "demo.deb" never falls through to Archives.
var packageSuffixes = []string{
	".deb",
	".rpm",
	".pkg.tar",
	".pkg.tar.zst",
	".pkg.tar.xz",
	".snap",
}

var extensions = map[string]Category{
	// Documents
	"pdf": Documents, "doc": Documents, "docx": Documents,
	"xls": Documents, "xlsx": Documents, "ppt": Documents, "pptx": Documents,
	"odt": Documents, "ods": Documents, "odp": Documents,
	"txt": Documents, "md": Documents, "rtf": Documents, "csv": Documents,
	"epub": Documents, "mobi": Documents, "tex": Documents,

	// Images
	"jpg": Images, "jpeg": Images, "png": Images, "gif": Images,
	"bmp": Images, "svg": Images, "webp": Images, "tiff": Images, "tif": Images,
	"ico": Images, "heic": Images, "raw": Images, "cr2": Images, "nef": Images,
	"xcf": Images, "psd": Images,

	// Audio
	"mp3": Audio, "flac": Audio, "wav": Audio, "ogg": Audio, "oga": Audio,
	"m4a": Audio, "aac": Audio, "opus": Audio, "wma": Audio,
	"mid": Audio, "midi": Audio,

	// Video
	"mp4": Video, "mkv": Video, "avi": Video, "mov": Video, "webm": Video,
	"wmv": Video, "flv": Video, "mpg": Video, "mpeg": Video, "m4v": Video,
	"3gp": Video,

	// Archives
	"zip": Archives, "tar": Archives, "gz": Archives, "bz2": Archives,
	"xz": Archives, "zst": Archives, "7z": Archives, "rar": Archives,
	"tgz": Archives, "tbz2": Archives, "lz4": Archives, "lzma": Archives,
	"iso": Archives, "cab": Archives,

	// Code
	"c": Code, "h": Code, "cpp": Code, "hpp": Code, "cc": Code,
	"rs": Code, "go": Code, "py": Code, "js": Code, "ts": Code,
	"jsx": Code, "tsx": Code, "java": Code, "kt": Code, "rb": Code,
	"php": Code, "sh": Code, "bash": Code, "pl": Code, "lua": Code,
	"swift": Code, "cs": Code, "scala": Code, "hs": Code,
	"html": Code, "css": Code, "json": Code, "xml": Code,
	"yml": Code, "yaml": Code, "toml": Code, "sql": Code, "proto": Code,

	// Binaries
	"so": Binaries, "a": Binaries, "o": Binaries, "dll": Binaries,
	"dylib": Binaries, "exe": Binaries, "bin": Binaries, "ko": Binaries,
	"wasm": Binaries, "pyc": Binaries, "class": Binaries, "jar": Binaries,
}

// Classify maps an absolute path to exactly one Category. It is pure: no
// I/O, no error path, safe to call concurrently without synchronization.
func Classify(path string) Category {
	lower := strings.ToLower(filepath.ToSlash(path))

	for _, prefix := range packagePrefixes {
		if underPrefix(lower, prefix) {
			return Packages
		}
	}
	for _, prefix := range systemPrefixes {
		if underPrefix(lower, prefix) {
			return System
		}
	}

	name := lower[strings.LastIndexByte(lower, '/')+1:]
	for _, suffix := range packageSuffixes {
		if strings.HasSuffix(name, suffix) {
			return Packages
		}
	}

	if dot := strings.LastIndexByte(name, '.'); dot > 0 && dot < len(name)-1 {
		if c, ok := extensions[name[dot+1:]]; ok {
			return c
		}
	}
	return Other
}

func underPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
