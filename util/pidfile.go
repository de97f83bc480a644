package util

import (
	"fmt"
	"os"
	"strconv"

	ps "github.com/mitchellh/go-ps"
)

// Pid file handling for the match runner. A bucket scan plus trace
// fetch can run for minutes, and two runners walking the same bucket
// would double-report every image, so each runner writes a pid file
// and refuses to start while another live runner holds it.

// AnotherProcessIsRunning returns true if the pid file at pathToFile
// contains the pid of a different, still-living process.
func AnotherProcessIsRunning(pathToFile string) bool {
	pid := ReadPidFile(pathToFile)
	return pid != 0 && pid != os.Getpid() && ProcessIsRunning(pid)
}

// ReadPidFile returns the pid recorded in the specified file, or zero
// if the file is missing or unparseable.
func ReadPidFile(pathToFile string) int {
	data, err := os.ReadFile(pathToFile)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return pid
}

// WritePidFile records this process' pid in the specified file.
func WritePidFile(pathToFile string) error {
	return os.WriteFile(pathToFile, []byte(strconv.Itoa(os.Getpid())), 0664)
}

// DeletePidFile removes the pid file, if the path looks safe to delete.
func DeletePidFile(pathToFile string) error {
	if LooksSafeToDelete(pathToFile, 12, 2) {
		return os.Remove(pathToFile)
	}
	return fmt.Errorf("Pid file %s does not look safe to delete", pathToFile)
}

// ProcessIsRunning returns true if a process with the given pid is
// running. This uses go-ps internally because golang's os.FindProcess
// always returns a process on *nix, even when no process with that
// pid is running.
func ProcessIsRunning(pid int) bool {
	proc, _ := ps.FindProcess(pid)
	return proc != nil
}
