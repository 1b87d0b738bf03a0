package shell

import (
	"fmt"
	"strings"

	"github.com/sxtool/sx/internal/profile"
	"mvdan.cc/sh/v3/syntax"
)

// IntegrationScript returns the rc snippet for the given shell: a prompt
// indicator driven by SANDBOX_MODE, completions for the builtin profiles,
// and convenience aliases. Unknown shells get an empty script.
func IntegrationScript(t Type) string {
	switch t {
	case Zsh:
		return zshIntegration()
	case Bash:
		return bashIntegration()
	case Fish:
		return fishIntegration()
	default:
		return ""
	}
}

// quote makes a string safe to splice into generated shell text.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Only unprintable input fails; drop it rather than emit it raw.
		return "''"
	}
	return q
}

// profileCompletions renders one completion entry per builtin profile,
// "name:description" quoted for the target shell.
func profileCompletions(indent string) string {
	var b strings.Builder
	for _, name := range profile.BuiltinNames() {
		fmt.Fprintf(&b, "%s%s\n", indent, quote(name+":"+profile.Describe(name)))
	}
	return b.String()
}

func zshIntegration() string {
	return `# sx.zsh - Zsh integration
# Add to ~/.zshrc: source <(sx shell-init zsh)

_sx_prompt_indicator() {
    if [[ -n "$SANDBOX_MODE" ]]; then
        local color
        case "$SANDBOX_MODE" in
            offline) color="%F{red}" ;;
            localhost) color="%F{yellow}" ;;
            online) color="%F{green}" ;;
            *) color="%F{blue}" ;;
        esac
        echo "${color}[sx:${SANDBOX_MODE}]%f "
    fi
}

if [[ -z "$_sx_PROMPT_INITIALIZED" ]]; then
    PROMPT='$(_sx_prompt_indicator)'"$PROMPT"
    _sx_PROMPT_INITIALIZED=1
fi

_sx() {
    local -a profiles
    profiles=(
` + profileCompletions("        ") + `    )
    _arguments \
        '(-n --dry-run)'{-n,--dry-run}'[Show profile without executing]' \
        '(-v --verbose)'{-v,--verbose}'[Verbose output]' \
        '(-t --trace)'{-t,--trace}'[Trace sandbox violations]' \
        '--offline[Block all network]' \
        '--online[Allow all network]' \
        '--localhost[Localhost only]' \
        '*:profile:_describe "profile" profiles' \
        '-- :command:_command_names'
}
compdef _sx sx

alias sxo='sx online'
alias sxl='sx localhost'
`
}

func bashIntegration() string {
	return `# sx.bash - Bash integration
# Add to ~/.bashrc: source <(sx shell-init bash)

_sx_prompt_indicator() {
    if [[ -n "$SANDBOX_MODE" && -z "$_sx_PROMPT_INITIALIZED" ]]; then
        local color reset
        reset='\[\033[0m\]'
        case "$SANDBOX_MODE" in
            offline) color='\[\033[0;31m\]' ;;
            localhost) color='\[\033[0;33m\]' ;;
            online) color='\[\033[0;32m\]' ;;
            *) color='\[\033[0;34m\]' ;;
        esac
        PS1="${color}[sx:${SANDBOX_MODE}]${reset} $PS1"
        _sx_PROMPT_INITIALIZED=1
    fi
}
_sx_prompt_indicator

_sx_complete() {
    local profiles=` + quote(strings.Join(profile.BuiltinNames(), " ")) + `
    COMPREPLY=($(compgen -W "$profiles" -- "${COMP_WORDS[COMP_CWORD]}"))
}
complete -F _sx_complete sx

alias sxo='sx online'
alias sxl='sx localhost'
`
}

func fishIntegration() string {
	var b strings.Builder
	b.WriteString(`# sx.fish - Fish integration
# Add to ~/.config/fish/config.fish: sx shell-init fish | source

function _sx_prompt_indicator
    if test -n "$SANDBOX_MODE"
        switch "$SANDBOX_MODE"
            case offline
                set_color red
            case localhost
                set_color yellow
            case online
                set_color green
            case '*'
                set_color blue
        end
        echo -n "[sx:$SANDBOX_MODE] "
        set_color normal
    end
end

`)
	for _, name := range profile.BuiltinNames() {
		fmt.Fprintf(&b, "complete -c sx -a %s -d %s\n", quote(name), quote(profile.Describe(name)))
	}
	b.WriteString(`
alias sxo='sx online'
alias sxl='sx localhost'
`)
	return b.String()
}
