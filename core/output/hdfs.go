package output

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/user"
	"path"

	"github.com/colinmarc/hdfs/v2"
	"github.com/fbz-tec/vexport/internal/logger"
)

const defaultNamenodePort = "8020"

// HDFSOptions configures the HDFS client.
type HDFSOptions struct {
	// Namenode address, host or host:port.
	Namenode string
	// User to act as. Defaults to HADOOP_USER_NAME, then the OS user.
	User string
}

// HDFS writes to a Hadoop distributed filesystem.
type HDFS struct {
	client *hdfs.Client
}

// NewHDFS connects to the namenode described by opts.
func NewHDFS(opts HDFSOptions) (*HDFS, error) {
	addr := namenodeAddress(opts.Namenode)
	u := hdfsUser(opts.User)

	logger.Debug("Connecting to HDFS namenode %s as %s", addr, u)
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: []string{addr},
		User:      u,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to hdfs namenode %s: %w", addr, err)
	}
	return &HDFS{client: client}, nil
}

func (h *HDFS) MkdirParents(name string) error {
	dir := path.Dir(name)
	logger.Debug("Ensuring hdfs directory exists: %s", dir)
	if err := h.client.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating hdfs directory %s: %w", dir, err)
	}
	return nil
}

func (h *HDFS) CreateNew(name string) (io.WriteCloser, error) {
	logger.Debug("Creating hdfs file: %s", name)
	// Create refuses to overwrite an existing file.
	w, err := h.client.Create(name)
	if err != nil {
		return nil, fmt.Errorf("error creating hdfs file: %w", err)
	}
	return w, nil
}

func (h *HDFS) Close() error {
	return h.client.Close()
}

func namenodeAddress(namenode string) string {
	if namenode == "" {
		namenode = os.Getenv("HADOOP_NAMENODE")
	}
	if _, _, err := net.SplitHostPort(namenode); err != nil {
		return namenode + ":" + defaultNamenodePort
	}
	return namenode
}

func hdfsUser(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if u := os.Getenv("HADOOP_USER_NAME"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
