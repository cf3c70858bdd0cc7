package image

// Target принимает растровые команды. *command.Buffer реализует его.
type Target interface {
	Append(fragment []byte)
}
