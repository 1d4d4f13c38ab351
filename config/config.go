package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	MainDir                         = ".stageload"
	ConnectionsConfigFileNamePrefix = "connections"
	ConnectionsConfigFileNameExt    = "yaml"
	ConnectionsConfigFileFullName   = ConnectionsConfigFileNamePrefix + "." + ConnectionsConfigFileNameExt
	DefaultsConfigFileFullName      = "defaults.yaml"
	configFileMode                  = 0600 // files may hold credentials
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a YAML map of keys to values stored on disk.
// Data is loaded on first use and written back on every change.
type File struct {
	Dirname      string
	FileName     string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	return &File{
		Dirname:  dirName,
		FileName: filename,
		FullPath: filepath.Join(dirName, filename),
		data:     make(map[string]interface{}),
	}
}

// NewConnectionsFile returns the connections file in the stageload home directory.
func NewConnectionsFile() (*File, error) {
	dir, err := GetConfigHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConfigFileWithDir(dir, ConnectionsConfigFileFullName), nil
}

// NewDefaultsFile returns the file of default flag values in the stageload home directory.
func NewDefaultsFile() (*File, error) {
	dir, err := GetConfigHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConfigFileWithDir(dir, DefaultsConfigFileFullName), nil
}

// Get will fetch the key from the config File into variable, out, which must be a pointer.
// Return KeyNotFoundError if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	if reflect.ValueOf(out).Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadDataAllowMissing(); err != nil {
		return err
	}
	d, ok := c.data[key]
	if !ok { // if the key was not found...
		return KeyNotFoundError{c.FullPath, key}
	}
	return mapstructure.Decode(d, out)
}

// Set saves val under key. val is stored in its YAML form.
func (c *File) Set(key string, val interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadDataAllowMissing(); err != nil {
		return err
	}
	// Store the generic YAML form so Get decodes the same value before and after a reload.
	b, err := yaml.Marshal(val)
	if err != nil {
		return fmt.Errorf("error marshalling value for key %v: %v", key, err)
	}
	var generic interface{}
	if err = yaml.Unmarshal(b, &generic); err != nil {
		return err
	}
	c.data[key] = generic
	return c.save()
}

func (c *File) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadDataAllowMissing(); err != nil {
		return err
	}
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	return c.save()
}

// GetAllKeys returns the sorted keys in the file.
func (c *File) GetAllKeys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadDataAllowMissing(); err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

func (c *File) loadDataAllowMissing() error {
	if c.dataIsLoaded {
		return nil
	}
	err := c.loadData()
	var fnf FileNotFoundError
	if errors.As(err, &fnf) { // if the file is missing then start empty...
		c.dataIsLoaded = true
		return nil
	}
	return err
}

func (c *File) loadData() error {
	b, err := ioutil.ReadFile(c.FullPath)
	if os.IsNotExist(err) {
		return FileNotFoundError{c.FullPath}
	}
	if err != nil {
		return err
	}
	m := make(map[string]interface{})
	if err = yaml.Unmarshal(b, &m); err != nil {
		return errors.Wrapf(err, "error parsing config file %v", c.FullPath)
	}
	c.data = m
	c.dataIsLoaded = true
	return nil
}

func (c *File) save() error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data for config file %v: %v", c.FullPath, err)
	}
	if err = makeDir(c.Dirname); err != nil {
		return err
	}
	if err = ioutil.WriteFile(c.FullPath, b, configFileMode); err != nil {
		return errors.Wrapf(err, "error writing config file %v", c.FullPath)
	}
	return os.Chmod(c.FullPath, configFileMode) // WriteFile keeps the mode of an existing file.
}

// String lists the keys in the file.
func (c *File) String() string {
	keys, _ := c.GetAllKeys()
	return fmt.Sprintf("%v: %v", c.FullPath, strings.Join(keys, ", "))
}
