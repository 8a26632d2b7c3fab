package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理模型缓存目录。磁盘布局遵循：
//
//	<StoragePath>/<name>    # 模型文件本体
//
// 条目只由文件本身组成，Size/ModTime 由文件系统提供，不额外记录元数据。
type Store interface {
	// Root 返回缓存根目录的绝对路径。
	Root() string

	// Path 返回 name 对应的本地路径，不校验 name 是否合法，也不检查是否存在。
	Path(name string) string

	// Stat 返回缓存条目信息。不存在或为目录时返回 ErrNotFound。
	Stat(name string) (*Entry, error)

	// List 非递归列出根目录下以 ext 结尾的文件名，顺序与目录枚举一致。
	List(ext string) ([]string, error)

	// Put 将 body 写入 name 对应的文件。实现需通过临时文件 + rename
	// 保证写入原子性，并在失败时清理临时文件。
	Put(ctx context.Context, name string, body io.Reader) (*Entry, error)
}

// Entry 表示一个已落盘的模型文件。
type Entry struct {
	Name      string    `json:"name"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

var (
	// ErrNotFound 表示缓存不存在。
	ErrNotFound = errors.New("cache entry not found")
	// ErrInvalidName 表示写入目标会逃逸出缓存根目录。
	ErrInvalidName = errors.New("invalid cache entry name")
)
