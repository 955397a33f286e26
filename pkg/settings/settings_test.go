package settings

import (
	"testing"
)

func TestNewCliParams(t *testing.T) {
	got := NewCliParams()
	want := &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		ExitOnError: true,
	}
	if *got != *want {
		t.Errorf("NewCliParams() = %+v, want %+v", got, want)
	}
}

func TestVersionInformationDefaults(t *testing.T) {
	if VersionInformation.BuildVersion == "" {
		t.Error("BuildVersion should have a default")
	}
	if VersionInformation.Commit == "" {
		t.Error("Commit should have a default")
	}
	if VersionInformation.BuildTime == "" {
		t.Error("BuildTime should have a default")
	}
}
